package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/garyjia/billed/internal/application/submission"
	"github.com/garyjia/billed/internal/interfaces/cli"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

// offlineEnv points billctl at a fresh local database
func offlineEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("BILLED_DATABASE_PATH", filepath.Join(dir, "bills.db"))
	t.Setenv("BILLED_STORAGE_DRIVER", "local")
	t.Setenv("BILLED_STORAGE_LOCAL_DIR", filepath.Join(dir, "receipts"))
	t.Setenv("BILLED_CLIENT_SESSION_PATH", filepath.Join(dir, "session.db"))
	t.Setenv("BILLED_LOGGER_OUTPUT_PATH", "stderr")
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), append([]string{"--offline"}, args...), &stdout, &stderr)
	return stdout.String(), err
}

func TestBillctl_SubmitListExport(t *testing.T) {
	dir := offlineEnv(t)

	receipt := filepath.Join(dir, "ticket.png")
	require.NoError(t, os.WriteFile(receipt, pngMagic, 0o644))

	out, err := execute(t, "login", "--email", "employee@test.tld")
	require.NoError(t, err)
	assert.Contains(t, out, "Connecté en tant que employee@test.tld")

	out, err = execute(t, "new", "--file", receipt, "--name", "Train", "--date", "2024-03-02", "--amount", "42", "--pct", "abc")
	require.NoError(t, err)
	assert.Contains(t, out, "Envoyer une note de frais")
	assert.Contains(t, out, "Mes notes de frais")
	assert.Contains(t, out, "2 Mar. 24")
	assert.Contains(t, out, "42 €")

	_, err = execute(t, "new", "--name", "Taxi", "--date", "2024-05-01", "--amount", "15")
	require.NoError(t, err)

	out, err = execute(t, "list", "--receipts")
	require.NoError(t, err)
	assert.Less(t, bytes.Index([]byte(out), []byte("Taxi")), bytes.Index([]byte(out), []byte("Train")))
	assert.Contains(t, out, "Justificatif Train: ticket.png http://localhost:8080/api/v1/bills/")
	assert.NotContains(t, out, "Justificatif Taxi")

	xlsx := filepath.Join(dir, "bills.xlsx")
	out, err = execute(t, "export", "--out", xlsx)
	require.NoError(t, err)
	assert.Contains(t, out, "2 notes de frais exportées")

	f, err := excelize.OpenFile(xlsx)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Notes de frais")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Taxi", rows[1][1])
	assert.Equal(t, "20", rows[2][5])

	out, err = execute(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Déconnecté")

	_, err = execute(t, "list")
	assert.Error(t, err)
}

func TestBillctl_RejectsNonImageReceipt(t *testing.T) {
	dir := offlineEnv(t)

	receipt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(receipt, []byte("not an image"), 0o644))

	_, err := execute(t, "login", "--email", "employee@test.tld")
	require.NoError(t, err)

	out, err := execute(t, "new", "--file", receipt, "--name", "Train")
	assert.ErrorIs(t, err, submission.ErrFileRejected)
	assert.Contains(t, out, cli.FileTypeErrorMessage)
}

func TestBillctl_LoginRequiresEmail(t *testing.T) {
	offlineEnv(t)

	_, err := execute(t, "login")
	assert.ErrorContains(t, err, "email")
}
