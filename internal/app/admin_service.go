package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"class_info_hub/internal/domain/timetable"
	idb "class_info_hub/internal/infra/database"
)

// Custom application-level errors for admin service
var ErrAdminNotAuthorized = fmt.Errorf("performing user is not authorized as an admin")
var ErrSubjectAlreadyExists = fmt.Errorf("subject with this ID already exists")
var ErrEmptyAnnouncement = fmt.Errorf("announcement content is empty")

type AdminService struct {
	ttRepo          timetable.Repository
	annRepo         timetable.AnnouncementRepository
	adminTelegramID int64
	now             func() time.Time
}

func NewAdminService(tr timetable.Repository, ar timetable.AnnouncementRepository, adminID int64) *AdminService {
	return &AdminService{
		ttRepo:          tr,
		annRepo:         ar,
		adminTelegramID: adminID,
		now:             time.Now,
	}
}

// AddSubject adds a subject to the class catalogue.
func (s *AdminService) AddSubject(ctx context.Context, performingAdminID int64, classID, subjectID, name, teacherName string) (*timetable.Subject, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}

	existing, err := s.ttRepo.ListSubjects(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing subjects: %w", err)
	}
	for _, subj := range existing {
		if subj.ID == subjectID {
			return nil, ErrSubjectAlreadyExists
		}
	}

	subject := &timetable.Subject{ID: subjectID, Name: name}
	if strings.TrimSpace(teacherName) != "" {
		subject.TeacherName = &teacherName
	}
	if err := s.ttRepo.CreateSubject(ctx, classID, subject); err != nil {
		return nil, fmt.Errorf("failed to create subject in repository: %w", err)
	}
	return subject, nil
}

// SetGeneralAnnouncement writes the day's general announcement. A stored AI summary is kept;
// it is regenerated or deleted on request only.
func (s *AdminService) SetGeneralAnnouncement(ctx context.Context, performingAdminID int64, classID, date, content string) (*timetable.DailyGeneralAnnouncement, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}
	if _, err := timetable.ParseDate(date); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyAnnouncement
	}

	g, err := s.annRepo.GetGeneralAnnouncement(ctx, classID, date)
	if err != nil {
		if !errors.Is(err, idb.ErrGeneralAnnouncementNotFound) {
			return nil, fmt.Errorf("failed to get general announcement: %w", err)
		}
		g = &timetable.DailyGeneralAnnouncement{Date: date, ItemType: timetable.ItemTypeGeneral}
	}
	g.Content = content
	g.UpdatedAt = s.now()

	if err := s.annRepo.SaveGeneralAnnouncement(ctx, classID, g); err != nil {
		return nil, fmt.Errorf("failed to save general announcement: %w", err)
	}
	return g, nil
}
