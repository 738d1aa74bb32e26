package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy các batch job.
// Các key required thiếu sẽ làm job dừng ngay từ lúc khởi động (exit != 0).
type Configuration struct {
	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI,required"` // URL kết nối cơ sở dữ liệu
	MongoDB_DBName        string `env:"MONGODB_DBNAME,required"`         // Tên cơ sở dữ liệu directory

	// Gemini Configuration
	Gemini_APIKey         string `env:"GEMINI_API_KEY,required"`                    // API key Google AI Studio
	Gemini_Model          string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"` // Model dùng để generate
	Gemini_TimeoutSeconds int    `env:"GEMINI_TIMEOUT_SECONDS" envDefault:"60"`     // Timeout cho 1 request

	// Rate limit / orchestration
	Provider_PauseMs       int `env:"PROVIDER_PAUSE_MS" envDefault:"1500"`        // Pause cố định sau mỗi provider call
	Generator_GroupSize    int `env:"GENERATOR_GROUP_SIZE" envDefault:"3"`        // Số organization chạy song song trong 1 nhóm
	Generator_GroupPauseMs int `env:"GENERATOR_GROUP_PAUSE_MS" envDefault:"5000"` // Pause giữa các nhóm

	// Retry policy
	Retry_MaxAttempts int `env:"RETRY_MAX_ATTEMPTS" envDefault:"3"`     // Số lần thử tối đa cho 1 provider call
	Retry_BaseDelayMs int `env:"RETRY_BASE_DELAY_MS" envDefault:"2000"` // Delay cơ sở cho linear backoff
}

// getEnvPath trả về đường dẫn đến file env dựa trên môi trường.
// Đi lên từ thư mục hiện tại để tìm thư mục config/env.
func getEnvPath() string {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			return filepath.Join(envDir, fmt.Sprintf("%s.env", env))
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig đọc cấu hình từ file env (nếu tìm thấy) và environment variables.
// File env không tồn tại không phải lỗi — batch job chạy trong container chỉ dùng env vars.
func NewConfig() *Configuration {
	envPath := getEnvPath()
	if envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				// Dùng fmt.Printf vì logger có thể chưa được init ở đây
				fmt.Printf("Không thể load file env tại %s: %v\n", envPath, err)
				return nil
			}
		}
	}

	cfg := Configuration{}
	if err := env.Parse(&cfg); err != nil {
		fmt.Printf("Lỗi khi parse config: %+v\n", err)
		return nil
	}

	return &cfg
}
