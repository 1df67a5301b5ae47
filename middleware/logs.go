package middleware

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"Kasir/Models"

	"github.com/gofiber/fiber/v2"
)

// LogData contains the information written for each request
type LogData struct {
	Timestamp time.Time     `json:"timestamp"`
	Method    string        `json:"method"`
	Path      string        `json:"path"`
	Status    int           `json:"status"`
	Latency   time.Duration `json:"latency"`
	IP        string        `json:"ip"`
	UserID    interface{}   `json:"user_id,omitempty"`
	Username  string        `json:"username,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// RequestLogger logs every request to the console and logs/requests.log as
// JSON, with user attribution when the auth middleware has run.
func RequestLogger() fiber.Handler {
	if err := os.MkdirAll("logs", 0755); err != nil {
		log.Printf("Error creating logs directory: %v\n", err)
	}

	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		data := LogData{
			Timestamp: start,
			Method:    c.Method(),
			Path:      c.Path(),
			Status:    c.Response().StatusCode(),
			Latency:   time.Since(start),
			IP:        c.IP(),
		}
		if user := c.Locals("user"); user != nil {
			if u, ok := user.(Models.User); ok {
				data.UserID = u.ID
				data.Username = u.Name
			}
		}
		if err != nil {
			data.Error = err.Error()
		}

		log.Printf("[%s] %s %s %d %s %s",
			data.Timestamp.Format("2006-01-02 15:04:05"),
			data.Method, data.Path, data.Status, data.Latency, data.IP)

		jsonData, _ := json.Marshal(data)
		logToFile("logs/requests.log", string(jsonData))

		return err
	}
}

// logToFile appends the log message to a file
func logToFile(filePath, message string) {
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Error opening log file: %v\n", err)
		return
	}
	defer file.Close()

	if _, err := fmt.Fprintln(file, message); err != nil {
		log.Printf("Error writing to log file: %v\n", err)
	}
}
