package repository

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/calentasker/calentasker-api/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return db, mock
}

func TestGroupRepository_TransferLeadership(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGroupRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `group_members` SET `role`=? WHERE group_id = ? AND user_id = ? AND role = ?")).
		WithArgs(string(models.RoleReader), 1, 10, string(models.RoleLeader)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `group_members` SET `role`=? WHERE group_id = ? AND user_id = ?")).
		WithArgs(string(models.RoleLeader), 1, 20).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.TransferLeadership(1, 10, 20))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupRepository_TransferLeadership_RequesterNotLeader(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGroupRepository(db)

	// The demote matches no row, so the whole transaction rolls back and the
	// promote is never issued.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `group_members` SET `role`=? WHERE group_id = ? AND user_id = ? AND role = ?")).
		WithArgs(string(models.RoleReader), 1, 10, string(models.RoleLeader)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	require.ErrorIs(t, repo.TransferLeadership(1, 10, 20), ErrNoLeaderRow)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupRepository_TransferLeadership_TargetMissing(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGroupRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `group_members` SET `role`=? WHERE group_id = ? AND user_id = ? AND role = ?")).
		WithArgs(string(models.RoleReader), 1, 10, string(models.RoleLeader)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `group_members` SET `role`=? WHERE group_id = ? AND user_id = ?")).
		WithArgs(string(models.RoleLeader), 1, 20).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	require.ErrorIs(t, repo.TransferLeadership(1, 10, 20), ErrNoTargetRow)
	require.NoError(t, mock.ExpectationsWereMet())
}
