package notification

import (
	"context"

	"medibook/utils"

	"go.uber.org/zap"
)

// LogService writes codes to the application log instead of sending them.
// Used in development when no SMS credentials are configured.
type LogService struct{}

func NewLogService() *LogService {
	return &LogService{}
}

func (s *LogService) SendOTP(ctx context.Context, contact, code string) error {
	utils.GetLogger().Info("otp delivery (log notifier)",
		zap.String("contact", contact),
		zap.String("code", code),
	)
	return nil
}
