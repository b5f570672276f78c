package service

import (
	"context"

	"github.com/NE-Resources-2025/Restful-sample-pms/internal/domain"
	"github.com/NE-Resources-2025/Restful-sample-pms/internal/repository"
)

type LogService struct {
	logRepo repository.LogRepository
}

func NewLogService(logRepo repository.LogRepository) *LogService {
	return &LogService{logRepo: logRepo}
}

// List is the admin view over the audit trail. Listing the logs does not
// itself append a log entry.
func (s *LogService) List(ctx context.Context, search string, page domain.Page) ([]domain.LogEntry, domain.PageMeta, error) {
	filter := domain.LogFilter{Search: search, Page: page.Normalize()}

	entries, err := s.logRepo.Find(ctx, filter)
	if err != nil {
		return nil, domain.PageMeta{}, err
	}
	total, err := s.logRepo.Count(ctx, filter)
	if err != nil {
		return nil, domain.PageMeta{}, err
	}
	return entries, domain.NewPageMeta(total, filter.Page), nil
}
