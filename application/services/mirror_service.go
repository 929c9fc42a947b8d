package services

import (
	"context"

	"go.uber.org/zap"

	"schoolride-backend/application/ports"
	"schoolride-backend/pkg/observability"
)

// Students are read from the primary store in pages of this size
const syncBatchSize = 100

// MirrorSyncService repairs and audits the secondary store against the
// primary. The write path mirrors best-effort, so the stores can drift;
// this service closes the gap on demand.
type MirrorSyncService struct {
	students ports.StudentRepository
	mirror   ports.MirrorStore
	logger   *zap.Logger
}

// NewMirrorSyncService creates a new mirror sync service
func NewMirrorSyncService(
	students ports.StudentRepository,
	mirror ports.MirrorStore,
	logger *zap.Logger,
) *MirrorSyncService {
	return &MirrorSyncService{
		students: students,
		mirror:   mirror,
		logger:   logger,
	}
}

// SyncReport summarizes a sync run
type SyncReport struct {
	SchoolID string `json:"school_id"`
	Scanned  int    `json:"scanned"`
	Mirrored int    `json:"mirrored"`
	Failed   int    `json:"failed"`
}

// AuditReport lists the drift between primary and secondary stores
type AuditReport struct {
	SchoolID string   `json:"school_id"`
	Primary  int      `json:"primary"`
	Mirrored int      `json:"mirrored"`
	Missing  []string `json:"missing"`
	Stale    []string `json:"stale"`
	Orphaned []string `json:"orphaned"`
}

// InSync reports whether the audit found no drift
func (r AuditReport) InSync() bool {
	return len(r.Missing) == 0 && len(r.Stale) == 0 && len(r.Orphaned) == 0
}

// SyncSchool rewrites every student of a school into the secondary store
func (s *MirrorSyncService) SyncSchool(ctx context.Context, schoolID string) (SyncReport, error) {
	report := SyncReport{SchoolID: schoolID}

	err := observability.Capture(ctx, "mirror.sync", func(ctx context.Context) error {
		offset := 0
		for {
			students, _, err := s.students.List(ctx, ports.StudentFilter{
				SchoolID: schoolID,
				Limit:    syncBatchSize,
				Offset:   offset,
			})
			if err != nil {
				return err
			}
			if len(students) == 0 {
				return nil
			}

			for _, student := range students {
				report.Scanned++
				if err := s.mirror.MirrorStudent(ctx, student); err != nil {
					report.Failed++
					s.logger.Warn("Failed to mirror student during sync",
						zap.String("studentID", student.ID().String()),
						zap.Error(err),
					)
					continue
				}
				report.Mirrored++
			}

			offset += len(students)
		}
	})
	if err != nil {
		return report, err
	}

	s.logger.Info("Mirror sync completed",
		zap.String("schoolID", schoolID),
		zap.Int("scanned", report.Scanned),
		zap.Int("mirrored", report.Mirrored),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

// AuditSchool compares both stores without modifying either
func (s *MirrorSyncService) AuditSchool(ctx context.Context, schoolID string) (AuditReport, error) {
	report := AuditReport{SchoolID: schoolID}

	err := observability.Capture(ctx, "mirror.audit", func(ctx context.Context) error {
		primaryIDs := make(map[string]struct{})
		offset := 0
		for {
			students, _, err := s.students.List(ctx, ports.StudentFilter{
				SchoolID: schoolID,
				Limit:    syncBatchSize,
				Offset:   offset,
			})
			if err != nil {
				return err
			}
			if len(students) == 0 {
				break
			}

			// Read back exactly this page from the secondary store
			ids := make([]string, 0, len(students))
			for _, student := range students {
				ids = append(ids, student.ID().String())
			}
			records, err := s.mirror.MirroredStudents(ctx, schoolID, ids)
			if err != nil {
				return err
			}
			recordByID := make(map[string]ports.MirroredStudent, len(records))
			for _, record := range records {
				recordByID[record.StudentID] = record
			}

			for _, student := range students {
				id := student.ID().String()
				primaryIDs[id] = struct{}{}
				report.Primary++

				record, ok := recordByID[id]
				switch {
				case !ok:
					report.Missing = append(report.Missing, id)
				case record.Version != student.Version():
					report.Stale = append(report.Stale, id)
				}
			}

			offset += len(students)
		}

		// The full partition listing catches records whose primary
		// counterpart is gone
		mirrored, err := s.mirror.ListMirroredStudents(ctx, schoolID)
		if err != nil {
			return err
		}
		report.Mirrored = len(mirrored)

		for _, record := range mirrored {
			if _, ok := primaryIDs[record.StudentID]; !ok {
				report.Orphaned = append(report.Orphaned, record.StudentID)
			}
		}

		return nil
	})
	if err != nil {
		return report, err
	}

	if !report.InSync() {
		s.logger.Warn("Mirror drift detected",
			zap.String("schoolID", schoolID),
			zap.Int("missing", len(report.Missing)),
			zap.Int("stale", len(report.Stale)),
			zap.Int("orphaned", len(report.Orphaned)),
		)
	}
	return report, nil
}
