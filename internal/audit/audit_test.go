package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weiawesome/offershare/pkg/log"
)

func TestLogWithDetail_WritesAuditFields(t *testing.T) {
	var buf bytes.Buffer
	ctx := log.WithLogger(context.Background(), log.New(log.Config{Level: "info", Output: &buf}))

	LogWithDetail(ctx, ActionMarkRead, "bob", "c1", "messages marked read")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, log.LogTypeAudit, entry[log.FieldLogType])
	require.Equal(t, ActionMarkRead, entry[FieldAction])
	require.Equal(t, "bob", entry[log.FieldUserID])
	require.Equal(t, "c1", entry[FieldDetail])
}
