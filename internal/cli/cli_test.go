package cli_test

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/pokedex-client/internal/cli"
	"github.com/Sternrassler/pokedex-client/internal/testutil"
)

// setupCLITest points the CLI at a mock API and an isolated config path.
func setupCLITest(t *testing.T) (*testutil.MockPokeAPI, string) {
	t.Helper()

	mock := testutil.NewMockPokeAPIWithSamples()
	t.Cleanup(mock.Close)

	t.Setenv("POKEDEX_BASE_URL", mock.BaseURL())
	t.Setenv("POKEDEX_LOG_LEVEL", "error")
	t.Setenv("POKEDEX_REDIS_ADDR", "")

	return mock, filepath.Join(t.TempDir(), "config.yaml")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestList_PrintsSortedPage(t *testing.T) {
	_, cfgPath := setupCLITest(t)

	out, err := run(t, "list", "--config", cfgPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{
		"#1 - BULBASAUR",
		"#4 - CHARMANDER",
		"#7 - SQUIRTLE",
		"#25 - PIKACHU",
		"#113 - CHANSEY",
	}, lines)
}

func TestList_Pagination(t *testing.T) {
	_, cfgPath := setupCLITest(t)
	t.Setenv("POKEDEX_PAGE_SIZE", "2")

	out, err := run(t, "list", "--config", cfgPath, "--offset", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "#1 - BULBASAUR\n#113 - CHANSEY\n")
	assert.Contains(t, out, "(prev: --offset 0 | next: --offset 4)")
}

func TestList_FailedDetailFailsCommand(t *testing.T) {
	mock, cfgPath := setupCLITest(t)
	mock.FailPokemon("squirtle", http.StatusInternalServerError)

	out, err := run(t, "list", "--config", cfgPath)
	require.Error(t, err)
	assert.NotContains(t, out, "#1 - BULBASAUR", "no partial page")
	assert.Contains(t, out, "Error loading the pokemon list")
}

func TestList_RejectsNegativeOffset(t *testing.T) {
	_, cfgPath := setupCLITest(t)

	_, err := run(t, "list", "--config", cfgPath, "--offset=-5")
	assert.ErrorContains(t, err, "offset must be >= 0")
}

func TestShow(t *testing.T) {
	_, cfgPath := setupCLITest(t)

	out, err := run(t, "show", "--config", cfgPath, "--history", "Pikachu", "1", "pikachu")
	require.NoError(t, err)

	assert.Contains(t, out, "PIKACHU (#25)")
	assert.Contains(t, out, "BULBASAUR (#1)")
	assert.Contains(t, out, "Type:      Grass, Poison")
	assert.Contains(t, out, "Height:    0.7 m")
	assert.Contains(t, out, "special attack")
	assert.Contains(t, out, "History: pikachu, bulbasaur")
}

func TestShow_NotFound(t *testing.T) {
	_, cfgPath := setupCLITest(t)

	out, err := run(t, "show", "--config", cfgPath, "missingno")
	assert.ErrorContains(t, err, "1 of 1 lookups failed")
	assert.Contains(t, out, "Could not find the details of MISSINGNO")
}

func TestConfigInit(t *testing.T) {
	setupCLITest(t)
	cfgPath := filepath.Join(t.TempDir(), "pokedex", "config.yaml")

	out, err := run(t, "config", "init", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration initialized at "+cfgPath)

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "page_size: 150")

	_, err = run(t, "config", "init", "--config", cfgPath)
	assert.ErrorContains(t, err, "--force")

	_, err = run(t, "config", "init", "--config", cfgPath, "--force")
	assert.NoError(t, err)
}

func TestConfigShow_MasksPassword(t *testing.T) {
	_, cfgPath := setupCLITest(t)
	t.Setenv("POKEDEX_REDIS_PASSWORD", "hunter2")

	out, err := run(t, "config", "show", "--config", cfgPath)
	require.NoError(t, err)
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, "********")
}

func TestInvalidConfigRejected(t *testing.T) {
	_, cfgPath := setupCLITest(t)
	require.NoError(t, os.WriteFile(cfgPath, []byte("join_policy: fastest\n"), 0o600))

	_, err := run(t, "list", "--config", cfgPath)
	assert.ErrorContains(t, err, "join_policy")
}
