package store

import (
	"time"

	"github.com/trezcool/educode/core"
	"github.com/trezcool/educode/core/admin"
	"github.com/trezcool/educode/core/notification"
)

// RestoreBackup starts a simulated restore of a backup. The job completes after Config.RestoreDelay
// unless it is cancelled first; no state is actually rolled back.
// The session user is told when the job starts and when it completes.
func (sess *Session) RestoreBackup(backupID string) (admin.RestoreJob, error) {
	s := sess.store
	s.mu.Lock()
	defer s.unlock()

	actor, err := sess.requireAdmin()
	if err != nil {
		return admin.RestoreJob{}, err
	}
	if _, ok := s.backupByID(backupID); !ok {
		return admin.RestoreJob{}, admin.ErrBackupNotFound
	}
	if s.closed {
		return admin.RestoreJob{}, core.NewShutdownError("store closed: restore cannot be scheduled")
	}

	r := &restoreJob{
		job: admin.RestoreJob{
			ID:        core.NewID("rst"),
			BackupID:  backupID,
			State:     admin.RestoreStarted,
			StartedAt: s.now(),
		},
		userID: actor.ID,
	}
	s.restores[r.job.ID] = r
	sess.notify("Restoring system from backup...", notification.TypeInfo)
	s.logger.Info("backup restore started", map[string]interface{}{"backup_id": backupID, "job_id": r.job.ID, "by": actor.ID})

	jobID := r.job.ID
	r.timer = time.AfterFunc(s.conf.RestoreDelay, func() { s.completeRestore(jobID) })
	return r.job, nil
}

func (s *Store) completeRestore(jobID string) {
	s.mu.Lock()
	defer s.unlock()

	r, ok := s.restores[jobID]
	if !ok || r.job.Finished() {
		return
	}
	now := s.now()
	r.job.State = admin.RestoreCompleted
	r.job.FinishedAt = &now
	s.notify(r.userID, "System restored successfully", notification.TypeSuccess)
	s.logger.Info("backup restore completed", map[string]interface{}{"backup_id": r.job.BackupID, "job_id": jobID})
}

// CancelRestore stops a restore that has not completed yet.
func (sess *Session) CancelRestore(jobID string) (admin.RestoreJob, error) {
	s := sess.store
	s.mu.Lock()
	defer s.unlock()

	if _, err := sess.requireAdmin(); err != nil {
		return admin.RestoreJob{}, err
	}
	r, ok := s.restores[jobID]
	if !ok {
		return admin.RestoreJob{}, admin.ErrRestoreNotFound
	}
	if r.job.Finished() {
		return r.job, admin.ErrRestoreFinished
	}
	if r.timer != nil {
		r.timer.Stop()
	}
	now := s.now()
	r.job.State = admin.RestoreCancelled
	r.job.FinishedAt = &now
	sess.notify("Backup restore cancelled", notification.TypeWarning)
	return r.job, nil
}

func (s *Store) RestoreJob(jobID string) (admin.RestoreJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.restores[jobID]; ok {
		return r.job, nil
	}
	return admin.RestoreJob{}, admin.ErrRestoreNotFound
}
