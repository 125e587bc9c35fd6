package database

import (
	"io/fs"
	"strings"
	"testing"

	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/testutil"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSeedDemoDoctors_OnlyOnEmptyTable(t *testing.T) {
	db := testutil.NewTestDB(t)
	log, _ := testutil.NewTestLogger()

	require.NoError(t, SeedDemoDoctors(db, log))

	var doctors []entity.Doctor
	require.NoError(t, db.Order("id ASC").Find(&doctors).Error)
	require.Len(t, doctors, 3)
	assert.Equal(t, "Иванов И.И.", doctors[0].Name)
	require.NotNil(t, doctors[0].Username)
	assert.Equal(t, "ivanov", *doctors[0].Username)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(doctors[0].PasswordHash), []byte("doc1")))

	require.NoError(t, SeedDemoDoctors(db, log))
	var count int64
	require.NoError(t, db.Model(&entity.Doctor{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestMigrationFilesArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	require.NoError(t, err)

	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}
	assert.Positive(t, ups)
	assert.Equal(t, ups, downs)

	source, err := iofs.New(migrationFiles, "migrations")
	require.NoError(t, err)
	first, err := source.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)
}
