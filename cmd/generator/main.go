package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	directorysvc "review_factory/internal/api/directory/service"
	"review_factory/internal/app"
	"review_factory/internal/logger"
)

// initLogger khởi tạo và cấu hình logger cho toàn bộ job
func initLogger() {
	// Logger tự đọc environment variables để cấu hình
	if err := logger.Init(nil); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
}

// parseTargets tách danh sách target từ cờ -orgs (phân cách bằng dấu phẩy)
func parseTargets(raw string) []string {
	if raw == "" {
		return nil
	}
	var targets []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			targets = append(targets, trimmed)
		}
	}
	return targets
}

func main() {
	orgsFlag := flag.String("orgs", "", "Danh sách organization (ObjectID hoặc slug, phân cách bằng dấu phẩy); rỗng = tất cả org draft")
	batchFlag := flag.Int("batch", 5, "Số review generate tối đa cho mỗi organization")
	dryRunFlag := flag.Bool("dry-run", false, "Chỉ in review sẽ tạo, không ghi database")
	verboseFlag := flag.Bool("verbose", false, "In diagnostic từng review")
	forceFlag := flag.Bool("force", false, "Bỏ qua cap theo quy mô nhân sự")
	flag.Parse()

	if *batchFlag <= 0 {
		fmt.Fprintf(os.Stderr, "Giá trị -batch không hợp lệ: %d\n", *batchFlag)
		os.Exit(1)
	}

	initLogger()
	app.InitGlobal()

	ctx := context.Background()
	app.InitRegistry(ctx)
	defer app.Shutdown()

	service, err := directorysvc.NewGeneratorService()
	if err != nil {
		logger.GetAppLogger().WithError(err).Fatal("Không khởi tạo được generator service")
	}

	summary, err := service.Run(ctx, directorysvc.RunOptions{
		Targets:   parseTargets(*orgsFlag),
		BatchSize: *batchFlag,
		DryRun:    *dryRunFlag,
		Verbose:   *verboseFlag,
		Force:     *forceFlag,
	})
	if err != nil {
		logger.GetAppLogger().WithError(err).Fatal("Generator run thất bại")
	}

	// Summary là output machine-readable duy nhất cho scheduler bên ngoài
	output, err := json.Marshal(summary)
	if err != nil {
		logger.GetAppLogger().WithError(err).Fatal("Không marshal được summary")
	}
	fmt.Println(string(output))
}
