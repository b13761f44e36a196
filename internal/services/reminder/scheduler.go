// Package reminder содержит рассылку напоминаний о скором возврате книг:
// планировщик публикует займы с истекающим сроком в RabbitMQ,
// отправитель рассылает письма читателям.
package reminder

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/library-service/internal/lib/sl"
	"github.com/magabrotheeeer/library-service/internal/models"
	"github.com/magabrotheeeer/library-service/internal/rabbitmq"
)

// LoanRepository определяет выборку займов для напоминаний.
type LoanRepository interface {
	FindLoansDueTomorrow(ctx context.Context) ([]*models.LoanInfo, error)
}

// SchedulerService периодически находит займы со сроком возврата завтра
// и публикует их в очередь напоминаний.
type SchedulerService struct {
	repo     LoanRepository
	interval time.Duration
	log      *slog.Logger
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo LoanRepository, interval time.Duration, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		repo:     repo,
		interval: interval,
		log:      log,
	}
}

// FindDueLoans запускает периодический поиск займов с истекающим сроком
// и публикацию напоминаний. Блокируется до отмены контекста.
func (s *SchedulerService) FindDueLoans(ctx context.Context, channel *amqp.Channel) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.log.Info("starting service to find loans due tomorrow")
			loansInfo, err := s.repo.FindLoansDueTomorrow(ctx)
			if err != nil {
				s.log.Error("failed to find loans", sl.Err(err))
				continue
			}
			for _, loanInfo := range loansInfo {
				err = rabbitmq.PublishMessage(channel, "notifications", "due", loanInfo)
				if err != nil {
					s.log.Error("failed to publish message", sl.Err(err))
				}
			}
		}
	}
}
