package docker

import (
	"testing"

	"github.com/docker/docker/api/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func containerWithMounts(id string, sources ...string) types.Container {
	c := types.Container{ID: id, Names: []string{"/" + id}}
	for _, src := range sources {
		c.Mounts = append(c.Mounts, types.MountPoint{Type: "bind", Source: src})
	}
	return c
}

func TestMountedUnder(t *testing.T) {
	root := "/forests/foo"
	containers := []types.Container{
		containerWithMounts("inside", "/forests/foo/backend"),
		containerWithMounts("nested", "/forests/foo/backend/data"),
		containerWithMounts("at-root", "/forests/foo"),
		containerWithMounts("sibling", "/forests/bar/backend"),
		containerWithMounts("prefix-sibling", "/forests/foobar"),
		containerWithMounts("mixed", "/var/lib/data", "/forests/foo/frontend"),
		containerWithMounts("no-mounts"),
		containerWithMounts("empty-source", ""),
	}

	matched := MountedUnder(containers, root)
	require.Len(t, matched, 4)

	var ids []string
	for _, c := range matched {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"inside", "nested", "at-root", "mixed"}, ids)
}

func TestMountedUnderNoMatches(t *testing.T) {
	containers := []types.Container{
		containerWithMounts("elsewhere", "/srv/app"),
	}
	assert.Empty(t, MountedUnder(containers, "/forests/foo"))
}

func TestPathWithin(t *testing.T) {
	assert.True(t, pathWithin("/forests/foo", "/forests/foo"))
	assert.True(t, pathWithin("/forests/foo", "/forests/foo/backend"))
	assert.False(t, pathWithin("/forests/foo", "/forests"))
	assert.False(t, pathWithin("/forests/foo", "/forests/foobar"))
	assert.False(t, pathWithin("/forests/foo", "/etc"))
}

func TestContainerName(t *testing.T) {
	named := types.Container{ID: "abc123", Names: []string{"/web"}}
	assert.Equal(t, "web", containerName(named))

	unnamed := types.Container{ID: "abc123"}
	assert.Equal(t, "abc123", containerName(unnamed))
}
