package testhelper

import (
	"os"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SetupTestDB opens a file-backed sqlite database in a temp dir and migrates
// the given models into it. The connection is closed when the test ends.
func SetupTestDB(t *testing.T, models ...interface{}) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "catalog.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get test database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			t.Fatalf("failed auto migrating test models: %v", err)
		}
	}
	return db
}

// Fake ffmpeg behaviours understood by WriteFakeFFmpeg.
const (
	// FFmpegSucceed writes a small playlist and one segment next to it.
	FFmpegSucceed = "succeed"
	// FFmpegFail prints a decoder error to stderr and exits 1.
	FFmpegFail = "fail"
	// FFmpegHang never finishes on its own.
	FFmpegHang = "hang"
	// FFmpegEmpty exits 0 but leaves an empty playlist.
	FFmpegEmpty = "empty"
)

var fakeFFmpegScripts = map[string]string{
	FFmpegSucceed: `#!/bin/sh
for last; do :; done
dir=$(dirname "$last")
printf 'segment' > "$dir/segment_000.ts"
printf '#EXTM3U\n#EXT-X-VERSION:3\n#EXT-X-TARGETDURATION:10\n#EXTINF:10.0,\nsegment_000.ts\n#EXT-X-ENDLIST\n' > "$last"
`,
	FFmpegFail: `#!/bin/sh
echo "input.mp4: Invalid data found when processing input" >&2
exit 1
`,
	FFmpegHang: `#!/bin/sh
exec sleep 30
`,
	FFmpegEmpty: `#!/bin/sh
for last; do :; done
: > "$last"
`,
}

// WriteFakeFFmpeg writes an executable stand-in for ffmpeg and returns its path.
// The scripts treat their last argument as the playlist path, as ffmpeg does.
func WriteFakeFFmpeg(t *testing.T, behaviour string) string {
	t.Helper()

	script, ok := fakeFFmpegScripts[behaviour]
	if !ok {
		t.Fatalf("unknown fake ffmpeg behaviour %q", behaviour)
	}
	path := filepath.Join(t.TempDir(), "ffmpeg-"+behaviour)
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("failed to write fake ffmpeg: %v", err)
	}
	return path
}

// WriteSourceFile creates a staged upload with some bytes in dir.
func WriteSourceFile(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("not really a video"), 0644); err != nil {
		t.Fatalf("failed to write source file: %v", err)
	}
	return path
}
