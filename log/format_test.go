// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"math/big"
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendUint64(t *testing.T) {
	assert.Equal(t, "99999", string(appendUint64(nil, 99999, false)))
	assert.Equal(t, "1,016,400", string(appendUint64(nil, 1016400, false)))
	assert.Equal(t, "-1,000,000", string(appendInt64(nil, -1000000)))
	assert.Equal(t, "100,000,000", FormatLogfmtUint64(100_000_000))
}

func TestFormatSlogValue(t *testing.T) {
	assert.Equal(t, "1,000,000", string(FormatSlogValue(slog.AnyValue(big.NewInt(1_000_000)), nil)))
	assert.Equal(t, "16,400", string(FormatSlogValue(slog.AnyValue(uint256.NewInt(16_400)), nil)))
	assert.Equal(t, `"with space"`, string(FormatSlogValue(slog.StringValue("with space"), nil)))
	assert.Equal(t, "true", string(FormatSlogValue(slog.BoolValue(true), nil)))
	var nilInt *big.Int
	assert.Equal(t, "<nil>", string(FormatSlogValue(slog.AnyValue(nilInt), nil)))
}

func TestTerminalHandler(t *testing.T) {
	out := new(bytes.Buffer)
	var level slog.LevelVar
	level.Set(slog.LevelInfo)
	l := NewLogger(NewTerminalHandlerWithLevel(out, &level, false))

	l.Debug("hidden", "k", 1)
	assert.Empty(t, out.String())

	l.Info("stake opened", "stakeID", 0, "amount", uint64(1_000_000))
	line := out.String()
	assert.True(t, strings.HasPrefix(line, "INFO ["))
	assert.Contains(t, line, "stake opened")
	assert.Contains(t, line, "stakeID=0")
	assert.Contains(t, line, "amount=1,000,000")
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestJSONHandler(t *testing.T) {
	out := new(bytes.Buffer)
	l := NewLogger(JSONHandler(out))
	l.Warn("rate changed", "rate", big.NewInt(164))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &entry))
	assert.Equal(t, "warn", entry["lvl"])
	assert.Equal(t, "rate changed", entry["msg"])
	assert.Equal(t, "164", entry["rate"])
}

func TestWithContextFollowsRoot(t *testing.T) {
	pkgLogger := WithContext("pkg", "test")

	out := new(bytes.Buffer)
	prev := Root()
	defer SetDefault(prev)
	SetDefault(NewLogger(NewTerminalHandler(out, false)))

	pkgLogger.Info("hello")
	assert.Contains(t, out.String(), "pkg=test")
}

func TestFromLegacyLevel(t *testing.T) {
	assert.Equal(t, LevelCrit, FromLegacyLevel(LegacyLevelCrit))
	assert.Equal(t, slog.LevelInfo, FromLegacyLevel(LegacyLevelInfo))
	assert.Equal(t, LevelTrace, FromLegacyLevel(9))
	assert.Equal(t, LevelCrit, FromLegacyLevel(-1))
}
