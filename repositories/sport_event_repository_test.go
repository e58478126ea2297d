package repositories

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestSportEventRepository_TryIncrementRegistered(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		want    bool
		wantErr bool
	}{
		{
			name: "slot granted below capacity",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE sport_events`).
					WithArgs(7).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			want: true,
		},
		{
			name: "ceiling reached grants nothing",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE sport_events`).
					WithArgs(7).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			want: false,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE sport_events`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewPostgresSportEventRepository(db)
			got, err := repo.TryIncrementRegistered(ctx, 7)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				require.Equal(t, tt.want, got)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSportEventRepository_DecrementRegistered(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE sport_events`).
			WithArgs(7).
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewPostgresSportEventRepository(db)
		require.NoError(t, repo.DecrementRegistered(ctx, 7))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown event", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE sport_events`).
			WithArgs(99).
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewPostgresSportEventRepository(db)
		err = repo.DecrementRegistered(ctx, 99)
		require.ErrorIs(t, err, ErrSportEventNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSportEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT .+ FROM sport_events`).
			WithArgs(404).
			WillReturnError(sql.ErrNoRows)

		repo := NewPostgresSportEventRepository(db)
		_, err = repo.GetByID(ctx, 404)
		require.ErrorIs(t, err, ErrSportEventNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
