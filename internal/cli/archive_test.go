package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/aretw0/complog/pkg/adapters/memory"
	"github.com/aretw0/complog/pkg/archive"
	"github.com/aretw0/complog/pkg/domain"
	"github.com/aretw0/complog/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func archived(t *testing.T) *archive.Manager {
	t.Helper()
	reg := registry.New()
	mgr := archive.NewManager(memory.NewStore())
	for _, id := range []string{"b", "a"} {
		require.NoError(t, reg.Create(id))
		require.NoError(t, reg.StartTest(id, "login"))
		require.NoError(t, reg.AddLog(id, "hello"))
		require.NoError(t, reg.EndTest(id, "passed"))
		_, err := mgr.Finalize(context.Background(), reg, id)
		require.NoError(t, err)
	}
	return mgr
}

func TestArchiveCommands(t *testing.T) {
	ctx := context.Background()
	mgr := archived(t)

	var out bytes.Buffer
	require.NoError(t, ListArchive(ctx, mgr, &out))
	assert.Equal(t, "a\nb\n", out.String())

	out.Reset()
	require.NoError(t, InspectArchive(ctx, mgr, "a", FormatTree, &out))
	assert.Contains(t, out.String(), "a  tests=1 steps=0 logs=1  complete")
	assert.Contains(t, out.String(), "- **Test** login → `passed`")

	out.Reset()
	require.NoError(t, InspectArchive(ctx, mgr, "a", FormatJSON, &out))
	_, err := domain.ParseDocument(out.Bytes())
	assert.NoError(t, err)

	out.Reset()
	require.NoError(t, InspectArchive(ctx, mgr, "a", FormatMermaid, &out))
	assert.Contains(t, out.String(), `n1[["Test: login"]]`)

	assert.ErrorContains(t, InspectArchive(ctx, mgr, "a", "xml", &out), "unknown format")
	assert.ErrorIs(t, InspectArchive(ctx, mgr, "ghost", FormatTree, &out), domain.ErrArchiveNotFound)

	out.Reset()
	require.NoError(t, RemoveArchive(ctx, mgr, []string{"a", "b"}, &out))
	assert.Equal(t, "removed a\nremoved b\n", out.String())
	ids, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
