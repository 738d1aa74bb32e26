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
	orgsFlag := flag.String("orgs", "", "Giới hạn phase lên lịch theo danh sách organization (ObjectID hoặc slug)")
	batchFlag := flag.Int("batch", 20, "Số review xử lý tối đa cho mỗi phase")
	dryRunFlag := flag.Bool("dry-run", false, "Chỉ in các thay đổi sẽ thực hiện, không ghi database")
	verboseFlag := flag.Bool("verbose", false, "In diagnostic từng review")
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

	service, err := directorysvc.NewPublisherService()
	if err != nil {
		logger.GetAppLogger().WithError(err).Fatal("Không khởi tạo được publisher service")
	}

	summary, err := service.Run(ctx, directorysvc.RunOptions{
		Targets:   parseTargets(*orgsFlag),
		BatchSize: *batchFlag,
		DryRun:    *dryRunFlag,
		Verbose:   *verboseFlag,
	})
	if err != nil {
		logger.GetAppLogger().WithError(err).Fatal("Publisher run thất bại")
	}

	// Summary là output machine-readable duy nhất cho scheduler bên ngoài
	output, err := json.Marshal(summary)
	if err != nil {
		logger.GetAppLogger().WithError(err).Fatal("Không marshal được summary")
	}
	fmt.Println(string(output))
}
