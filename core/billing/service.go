package billing

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/enrollment"
	"github.com/trezcool/shule/core/guardian"
	"github.com/trezcool/shule/core/student"
)

// Service gathers a family's complete billing snapshot from the student,
// guardian and enrollment services and feeds it through the Engine.
type Service struct {
	engine        *Engine
	studentSvc    *student.Service
	guardianSvc   *guardian.Service
	enrollmentSvc *enrollment.Service
	mailSvc       core.EmailService
	logger        core.Logger
}

func NewService(
	engine *Engine,
	studentSvc *student.Service,
	guardianSvc *guardian.Service,
	enrollmentSvc *enrollment.Service,
	mailSvc core.EmailService,
	logger core.Logger,
) *Service {
	return &Service{
		engine:        engine,
		studentSvc:    studentSvc,
		guardianSvc:   guardianSvc,
		enrollmentSvc: enrollmentSvc,
		mailSvc:       mailSvc,
		logger:        logger,
	}
}

func (svc *Service) snapshotFamily(ctx context.Context, gdn guardian.Guardian) ([]Enrollee, error) {
	siblings, err := svc.studentSvc.Siblings(ctx, gdn.ID)
	if err != nil {
		return nil, err
	}
	enrollees := make([]Enrollee, 0, len(siblings))
	for _, std := range siblings {
		assignments, err := svc.enrollmentSvc.StudentAssignments(ctx, std.ID)
		if err != nil {
			return nil, err
		}
		enrollees = append(enrollees, Enrollee{
			StudentID:   std.ID,
			FamilyID:    gdn.ID,
			GradeLevel:  std.GradeLevel,
			IsStaff:     gdn.IsStaff,
			PaidInFull:  std.PaidInFull,
			Assignments: assignments,
		})
	}
	return enrollees, nil
}

// FamilyStatement computes tuition line items for all of one guardian's
// children in a single batch.
func (svc *Service) FamilyStatement(ctx context.Context, guardianID string) ([]LineItem, error) {
	gdn, err := svc.guardianSvc.GetByID(ctx, guardianID)
	if err != nil {
		return nil, err
	}
	enrollees, err := svc.snapshotFamily(ctx, gdn)
	if err != nil {
		return nil, err
	}
	return svc.engine.Run(enrollees)
}

// AllStatements computes tuition line items for every family in the school.
func (svc *Service) AllStatements(ctx context.Context) ([]LineItem, error) {
	guardians, err := svc.guardianSvc.Query(ctx, nil)
	if err != nil {
		return nil, err
	}
	var enrollees []Enrollee
	for _, gdn := range guardians {
		famEnrollees, err := svc.snapshotFamily(ctx, gdn)
		if err != nil {
			return nil, err
		}
		enrollees = append(enrollees, famEnrollees...)
	}
	return svc.engine.Run(enrollees)
}

// EmailFamilyStatement computes a family's statement and emails it to the
// guardian.
func (svc *Service) EmailFamilyStatement(ctx context.Context, guardianID string) ([]LineItem, error) {
	gdn, err := svc.guardianSvc.GetByID(ctx, guardianID)
	if err != nil {
		return nil, err
	}
	enrollees, err := svc.snapshotFamily(ctx, gdn)
	if err != nil {
		return nil, err
	}
	items, err := svc.engine.Run(enrollees)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(enrollees))
	for _, enr := range enrollees {
		std, err := svc.studentSvc.GetByID(ctx, enr.StudentID)
		if err != nil {
			return nil, err
		}
		names[enr.StudentID] = std.FullName()
	}

	msg := &core.EmailMessage{
		To:          []mail.Address{{Name: gdn.Name, Address: gdn.Email}},
		Subject:     fmt.Sprintf("%s - Tuition Statement", core.Conf.AppName),
		TextContent: renderStatement(gdn.Name, items, names),
	}
	svc.mailSvc.SendMessages(msg)
	svc.logger.Info("tuition statement sent", map[string]interface{}{"guardian_id": gdn.ID})
	return items, nil
}

func renderStatement(guardianName string, items []LineItem, studentNames map[string]string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Dear %s,\n\nHere is your tuition statement:\n\n", guardianName)
	var total float64
	for _, item := range items {
		name := studentNames[item.StudentID]
		if name == "" {
			name = item.StudentID
		}
		fmt.Fprintf(&sb, "  %s (grade %s): %.2f [%s]\n", name, item.GradeLevel, item.Amount, item.Status)
		total += item.Amount
	}
	fmt.Fprintf(&sb, "\nTotal due: %.2f\n", total)
	return sb.String()
}
