package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/nongdanviet/nongdanviet-backend/config"
	"github.com/nongdanviet/nongdanviet-backend/internal/app/model"
	"github.com/nongdanviet/nongdanviet-backend/internal/app/repository"
	"github.com/nongdanviet/nongdanviet-backend/internal/db"
	"github.com/xuri/excelize/v2"
)

func main() {
	// Kiểm tra tham số dòng lệnh
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	// Nạp cấu hình
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// Kết nối DB
	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	salinityRepo := repository.NewSalinityRepository(db.GetDB())

	// Đọc file XLSX
	fmt.Printf("Reading XLSX file: %s\n", filePath)
	stations, err := readStationsFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total stations to import: %d\n", len(stations))

	// Xác nhận trước khi ghi
	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	batchSize := 100
	fmt.Printf("Starting bulk import with batch size: %d\n", batchSize)
	if err := salinityRepo.BulkCreateStations(stations, batchSize); err != nil {
		log.Fatal("Failed to bulk create stations:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total stations imported: %d\n", len(stations))
}

func readStationsFromXLSX(filePath string) ([]model.SalinityStation, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	var stations []model.SalinityStation
	seenCodes := make(map[string]bool) // loại trùng mã trạm
	skippedCount := 0
	invalidCoordCount := 0

	// Hàng đầu là tiêu đề nên bỏ qua
	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}

		// Cột: tên trạm, mã trạm, sông, tỉnh, vĩ độ, kinh độ, danh sách xã
		if len(row) < 6 {
			skippedCount++
			continue
		}

		name := strings.TrimSpace(row[0])
		code := strings.TrimSpace(row[1])
		river := strings.TrimSpace(row[2])
		province := strings.TrimSpace(row[3])
		latitudeStr := strings.TrimSpace(row[4])
		longitudeStr := strings.TrimSpace(row[5])

		communes := pq.StringArray{}
		if len(row) > 6 {
			for _, c := range strings.Split(row[6], ",") {
				c = strings.TrimSpace(c)
				if c != "" {
					communes = append(communes, c)
				}
			}
		}

		// Các trường bắt buộc
		if name == "" || code == "" || province == "" {
			skippedCount++
			continue
		}

		// Toạ độ phải hợp lệ
		lat, errLat := strconv.ParseFloat(latitudeStr, 64)
		lng, errLng := strconv.ParseFloat(longitudeStr, 64)
		if errLat != nil || errLng != nil || lat == 0 || lng == 0 {
			invalidCoordCount++
			skippedCount++
			continue
		}

		if seenCodes[code] {
			skippedCount++
			continue
		}
		seenCodes[code] = true

		stations = append(stations, model.SalinityStation{
			Name:      name,
			Code:      code,
			River:     river,
			Province:  province,
			Latitude:  lat,
			Longitude: lng,
			Communes:  communes,
		})
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Total rows: %d\n", len(rows)-1)
	fmt.Printf("  Valid stations: %d\n", len(stations))
	fmt.Printf("  Skipped rows: %d\n", skippedCount)
	fmt.Printf("  Rows with invalid coordinates: %d\n", invalidCoordCount)

	return stations, nil
}
