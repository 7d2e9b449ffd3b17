package service

import (
	"context"
	"fmt"

	"unilearn_backend/internal/model"
	"unilearn_backend/pkg/logger"
	"unilearn_backend/pkg/mail"

	"go.uber.org/zap"
)

// NotificationService mails users about course events. Sending happens after the
// triggering transaction commits and failures are only logged.
type NotificationService struct {
	mailer mail.Mailer
}

func NewNotificationService(mailer mail.Mailer) *NotificationService {
	return &NotificationService{mailer: mailer}
}

func (s *NotificationService) CourseApproved(ctx context.Context, course *model.Course) {
	s.notifyTeacher(ctx, course,
		fmt.Sprintf("Course \"%s\" is now public", course.Title),
		fmt.Sprintf("Your course \"%s\" was approved and is visible in the catalogue.", course.Title),
	)
}

func (s *NotificationService) CourseDisallowed(ctx context.Context, course *model.Course) {
	s.notifyTeacher(ctx, course,
		fmt.Sprintf("Course \"%s\" was hidden", course.Title),
		fmt.Sprintf("Your course \"%s\" was taken out of the public catalogue by a moderator.", course.Title),
	)
}

func (s *NotificationService) CourseCompleted(ctx context.Context, student *model.Student, course *model.Course) {
	s.send(ctx, mail.Message{
		ToName:  student.User.Name,
		ToEmail: student.User.Email,
		Subject: fmt.Sprintf("You completed \"%s\"", course.Title),
		Text:    fmt.Sprintf("Congratulations, you passed every quiz of \"%s\".", course.Title),
	})
}

func (s *NotificationService) notifyTeacher(ctx context.Context, course *model.Course, subject, text string) {
	if course.Teacher == nil {
		return
	}
	s.send(ctx, mail.Message{
		ToName:  course.Teacher.User.Name,
		ToEmail: course.Teacher.User.Email,
		Subject: subject,
		Text:    text,
	})
}

func (s *NotificationService) send(ctx context.Context, msg mail.Message) {
	if s == nil || s.mailer == nil || msg.ToEmail == "" {
		return
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		logger.Log.Warn("notification not sent",
			zap.String("to", msg.ToEmail),
			zap.String("subject", msg.Subject),
			zap.Error(err),
		)
	}
}
