package analytics

import (
	"WAGroups-Backend/internal/domain"
	"WAGroups-Backend/internal/repository/memory"
	"WAGroups-Backend/pkg/useragent"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestProcessor(t *testing.T) (*Processor, *memory.MemStorage) {
	t.Helper()

	storage := memory.New()
	parser, err := useragent.NewParser("", zap.NewNop())
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.WorkerCount = 1
	cfg.RetryAttempts = 1
	cfg.ShutdownTimeout = 5 * time.Second

	return NewProcessor(storage, parser, zap.NewNop(), cfg), storage
}

func seedGroup(t *testing.T, storage *memory.MemStorage) *domain.Group {
	t.Helper()
	group := &domain.Group{
		Name:     "Go Developers",
		Link:     "https://chat.whatsapp.com/go1",
		Category: "Tech",
		Approved: true,
	}
	require.NoError(t, storage.SaveGroup(context.Background(), group))
	return group
}

func strPtr(s string) *string { return &s }

func TestProcessor_RecordsClick(t *testing.T) {
	processor, storage := newTestProcessor(t)
	group := seedGroup(t, storage)

	require.NoError(t, processor.Start())

	err := processor.SubmitClick(&Click{
		GroupID:   group.ID,
		IPAddress: strPtr("203.0.113.7"),
		UserAgent: strPtr("Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148"),
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		byDevice, err := storage.GetClicksByDevice(context.Background(), group.ID)
		return err == nil && byDevice["mobile"] == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, processor.Stop())
}

func TestProcessor_StopDrainsQueue(t *testing.T) {
	processor, storage := newTestProcessor(t)
	group := seedGroup(t, storage)

	require.NoError(t, processor.Start())

	const n = 20
	for i := 0; i < n; i++ {
		require.NoError(t, processor.SubmitClick(&Click{GroupID: group.ID}))
	}

	// Every click accepted before Stop must be recorded, even when the
	// single worker still has a backlog.
	require.NoError(t, processor.Stop())

	byDevice, err := storage.GetClicksByDevice(context.Background(), group.ID)
	require.NoError(t, err)

	var total int64
	for _, count := range byDevice {
		total += count
	}
	assert.Equal(t, int64(n), total)
}

func TestProcessor_SubmitBeforeStart(t *testing.T) {
	processor, storage := newTestProcessor(t)
	group := seedGroup(t, storage)

	err := processor.SubmitClick(&Click{GroupID: group.ID})
	assert.Error(t, err)
}

func TestProcessor_StartTwice(t *testing.T) {
	processor, _ := newTestProcessor(t)

	require.NoError(t, processor.Start())
	assert.Error(t, processor.Start())
	require.NoError(t, processor.Stop())
}

func TestProcessor_StopWithoutStart(t *testing.T) {
	processor, _ := newTestProcessor(t)
	assert.Error(t, processor.Stop())
}

func TestProcessor_GetStats(t *testing.T) {
	processor, _ := newTestProcessor(t)

	stats := processor.GetStats()
	assert.Equal(t, false, stats["started"])
	assert.Equal(t, 1, stats["worker_count"])

	require.NoError(t, processor.Start())
	stats = processor.GetStats()
	assert.Equal(t, true, stats["started"])
	require.NoError(t, processor.Stop())
}

func TestParseUserAgent_DeviceTypes(t *testing.T) {
	parser, err := useragent.NewParser("", zap.NewNop())
	require.NoError(t, err)

	tests := []struct {
		name       string
		userAgent  string
		deviceType string
	}{
		{
			name:       "desktop chrome",
			userAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
			deviceType: "desktop",
		},
		{
			name:       "android mobile",
			userAgent:  "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Mobile Safari/537.36",
			deviceType: "mobile",
		},
		{
			name:       "googlebot",
			userAgent:  "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
			deviceType: "bot",
		},
		{
			name:       "empty",
			userAgent:  "",
			deviceType: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := parser.ParseUserAgent(tt.userAgent)
			assert.Equal(t, tt.deviceType, info.DeviceType)
		})
	}
}
