package tablesource

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapponejosh/lutherald/internal/config"
	"github.com/zapponejosh/lutherald/internal/database"
	"github.com/zapponejosh/lutherald/internal/lectionary"
)

var quiet = slog.New(slog.DiscardHandler)

// fakeS3 serves objects from memory.
type fakeS3 struct {
	objects map[string][]byte
	keys    []string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(in.Key)
	f.keys = append(f.keys, key)
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func defaultRaw(t *testing.T) lectionary.RawTables {
	t.Helper()
	raw, err := lectionary.DefaultRaw()
	require.NoError(t, err)
	return raw
}

func TestEmbedded(t *testing.T) {
	tables, err := Embedded{}.Load(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, tables.Fingerprint())
	assert.Equal(t, "embedded", Embedded{}.String())
}

func TestDir(t *testing.T) {
	raw := defaultRaw(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, lectionary.MoveableFeastsFile), raw.MoveableFeasts, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, lectionary.EmberDaysFile), raw.EmberDays, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, lectionary.FestivalsFile), raw.Festivals, 0o644))

	tables, err := Dir{Path: dir}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, raw.Fingerprint(), tables.Fingerprint())
}

func TestDir_Missing(t *testing.T) {
	_, err := Dir{Path: t.TempDir()}.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestS3(t *testing.T) {
	raw := defaultRaw(t)
	client := &fakeS3{objects: map[string][]byte{
		"tables/moveable_feasts.yaml": raw.MoveableFeasts,
		"tables/ember_days.yaml":      raw.EmberDays,
		"tables/festivals.yaml":       raw.Festivals,
	}}

	src := &S3{Client: client, Bucket: "lutherald", Prefix: "tables/"}
	tables, err := src.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, raw.Fingerprint(), tables.Fingerprint())
	assert.Equal(t, []string{
		"tables/moveable_feasts.yaml",
		"tables/ember_days.yaml",
		"tables/festivals.yaml",
	}, client.keys)
	assert.Equal(t, "s3://lutherald/tables", src.String())
}

func TestS3_NoPrefix(t *testing.T) {
	src := &S3{Bucket: "lutherald"}
	assert.Equal(t, "festivals.yaml", src.key(lectionary.FestivalsFile))
}

func TestS3_MissingObject(t *testing.T) {
	raw := defaultRaw(t)
	client := &fakeS3{objects: map[string][]byte{
		"moveable_feasts.yaml": raw.MoveableFeasts,
	}}

	_, err := (&S3{Client: client, Bucket: "lutherald"}).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3://lutherald/ember_days.yaml")
}

func TestS3_InvalidTable(t *testing.T) {
	raw := defaultRaw(t)
	client := &fakeS3{objects: map[string][]byte{
		"moveable_feasts.yaml": raw.MoveableFeasts,
		"ember_days.yaml":      raw.EmberDays,
		"festivals.yaml":       []byte("- date: 13-1\n  name: Nowhere\n"),
	}}

	_, err := (&S3{Client: client, Bucket: "lutherald"}).Load(context.Background())
	assert.ErrorIs(t, err, lectionary.ErrInvalidTable)
}

func TestSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(database.DefaultConfig(filepath.Join(t.TempDir(), "tables.db")), quiet)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.Migrate(ctx)
	require.NoError(t, err)

	src := SQLite{DB: db}

	_, err = src.Load(ctx)
	assert.ErrorIs(t, err, database.ErrNotFound)

	tables, err := lectionary.Default()
	require.NoError(t, err)
	_, err = db.SaveTables(ctx, tables, "embedded")
	require.NoError(t, err)

	loaded, err := src.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, tables.Fingerprint(), loaded.Fingerprint())
}

func TestFromConfig(t *testing.T) {
	ctx := context.Background()

	t.Run("embedded", func(t *testing.T) {
		src, closeFn, err := FromConfig(ctx, &config.Config{TableSource: config.SourceEmbedded}, quiet)
		require.NoError(t, err)
		defer closeFn()
		assert.IsType(t, Embedded{}, src)
	})

	t.Run("file", func(t *testing.T) {
		src, closeFn, err := FromConfig(ctx, &config.Config{TableSource: config.SourceFile, TableDir: "/srv/tables"}, quiet)
		require.NoError(t, err)
		defer closeFn()
		assert.Equal(t, Dir{Path: "/srv/tables"}, src)
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := &config.Config{
			TableSource:  config.SourceSQLite,
			DatabasePath: filepath.Join(t.TempDir(), "tables.db"),
		}
		src, closeFn, err := FromConfig(ctx, cfg, quiet)
		require.NoError(t, err)
		assert.IsType(t, SQLite{}, src)
		assert.NoError(t, closeFn())
	})

	t.Run("unknown", func(t *testing.T) {
		_, closeFn, err := FromConfig(ctx, &config.Config{TableSource: "ftp"}, quiet)
		assert.Error(t, err)
		assert.NotNil(t, closeFn)
	})
}

func TestLoad(t *testing.T) {
	tables, err := Load(context.Background(), Embedded{}, quiet)
	require.NoError(t, err)
	assert.Positive(t, tables.Festivals().Len())

	_, err = Load(context.Background(), Dir{Path: t.TempDir()}, quiet)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load tables from")
}

func TestOpenEngine(t *testing.T) {
	engine, closeFn, err := OpenEngine(context.Background(), &config.Config{TableSource: config.SourceEmbedded}, quiet)
	require.NoError(t, err)
	defer closeFn()

	info, err := engine.Lookup("2024-03-31")
	require.NoError(t, err)
	assert.True(t, info.Found())

	_, closeFn, err = OpenEngine(context.Background(), &config.Config{TableSource: config.SourceFile, TableDir: t.TempDir()}, quiet)
	assert.Error(t, err)
	assert.NoError(t, closeFn())
}
