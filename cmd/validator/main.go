package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

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

func main() {
	limitFlag := flag.Int("limit", 0, "Trần tổng số review xử lý trong run (0 = không giới hạn)")
	dryRunFlag := flag.Bool("dry-run", false, "Chỉ đánh giá và in kết quả, không ghi database")
	verboseFlag := flag.Bool("verbose", false, "In diagnostic từng review")
	showRejectedFlag := flag.Bool("show-rejected", false, "In chi tiết các review bị reject")
	flag.Parse()

	if *limitFlag < 0 {
		fmt.Fprintf(os.Stderr, "Giá trị -limit không hợp lệ: %d\n", *limitFlag)
		os.Exit(1)
	}

	initLogger()
	app.InitGlobal()

	ctx := context.Background()
	app.InitRegistry(ctx)
	defer app.Shutdown()

	service, err := directorysvc.NewModerationService()
	if err != nil {
		logger.GetAppLogger().WithError(err).Fatal("Không khởi tạo được moderation service")
	}

	summary, err := service.Run(ctx, directorysvc.RunOptions{
		Limit:        *limitFlag,
		DryRun:       *dryRunFlag,
		Verbose:      *verboseFlag,
		ShowRejected: *showRejectedFlag,
	})
	if err != nil {
		logger.GetAppLogger().WithError(err).Fatal("Moderation run thất bại")
	}

	// Summary là output machine-readable duy nhất cho scheduler bên ngoài
	output, err := json.Marshal(summary)
	if err != nil {
		logger.GetAppLogger().WithError(err).Fatal("Không marshal được summary")
	}
	fmt.Println(string(output))
}
