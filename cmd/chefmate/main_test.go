package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chefmate/internal/recipe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("STORE_BACKEND", "local")
	t.Setenv("DATA_DIR", dir)
	t.Setenv("METRICS_DB_PATH", filepath.Join(dir, "metrics.db"))
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("CHEFMATE_CONFIG", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root, closeAll := newRootCmd()
	defer closeAll()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestListCommands(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "list", "add", "milk", "-q", "2", "-u", "l")
	require.NoError(t, err)
	assert.Contains(t, out, "1 to buy")

	out, err = run(t, "list", "add", " Milk ", "-q", "0.5", "-u", "L")
	require.NoError(t, err)
	assert.Contains(t, out, "2.50")
	assert.Equal(t, 1, strings.Count(out, "ilk"), "matching items merge")

	_, err = run(t, "list", "add", "bread")
	require.NoError(t, err)

	out, err = run(t, "list", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "2 to buy")
	assert.Contains(t, out, "db")

	out, err = run(t, "list", "clear", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "0 to buy")

	_, err = run(t, "list", "add", "  ")
	assert.Error(t, err)
}

const recipesYAML = `recipes:
  - name: Pancakes
    course: breakfast
    servings: 2
    ingredients:
      - name: flour
        quantity: 200
        unit: g
      - name: egg
        quantity: 2
        unit: db
`

func TestRecipeCommands(t *testing.T) {
	dir := setupEnv(t)
	file := filepath.Join(dir, "recipes.yaml")
	require.NoError(t, os.WriteFile(file, []byte(recipesYAML), 0o644))

	out, err := run(t, "recipes", "import", file)
	require.NoError(t, err)
	require.Contains(t, out, "Pancakes")
	id := strings.Fields(out)[1]

	out, err = run(t, "recipes", "list", "--course", "Breakfast")
	require.NoError(t, err)
	assert.Contains(t, out, id)

	out, err = run(t, "recipes", "add-to-list", id, "-s", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "400")

	out, err = run(t, "recipes", "add-to-list", id)
	require.NoError(t, err)
	assert.Contains(t, out, "600")

	out, err = run(t, "recipes", "export")
	require.NoError(t, err)
	exported, err := readRecipes(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, exported, 1)
	assert.Equal(t, "Pancakes", exported[0].Name)
	assert.Equal(t, id, exported[0].ID)

	out, err = run(t, "metrics", "daily")
	require.NoError(t, err)
	assert.Contains(t, out, "ACTIONS")

	_, err = run(t, "recipes", "delete", id)
	require.NoError(t, err)
	_, err = run(t, "recipes", "show", id)
	assert.Error(t, err)
}

func TestWriteRecipesSkipsEmptyFields(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeRecipes(&buf, []recipe.Recipe{{Name: "Toast", Servings: 1}}))
	assert.NotContains(t, buf.String(), "external_link")
	assert.NotContains(t, buf.String(), "created_at")
}
