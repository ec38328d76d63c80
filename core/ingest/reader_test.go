package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestReadSplitsOnSemicolon(t *testing.T) {
	src := "municipio;cod_municipio;natureza;rmbh;registros;mes;ano;risp\n" +
		"Belo Horizonte;0001;Roubo;Sim;10;1;2023;1\n"
	rows, err := Read(strings.NewReader(src), zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Belo Horizonte", rows[0]["municipio"])
	require.Equal(t, "0001", rows[0]["cod_municipio"])
	require.Equal(t, "1", rows[0]["risp"])
}

func TestReadMissingColumnNamesIt(t *testing.T) {
	src := "municipio;cod_municipio;natureza;rmbh;registros;mes;ano\n" +
		"X;1;Y;Sim;1;1;2023\n"
	_, err := Read(strings.NewReader(src), zerolog.Nop())
	require.ErrorIs(t, err, ErrMissingColumn)
	require.Contains(t, err.Error(), "risp")
}

func TestReadToleratesRaggedRows(t *testing.T) {
	src := "municipio;cod_municipio;natureza;rmbh;registros;mes;ano;risp\n" +
		"Uberaba;3170;Furto;Não;4;2;2023\n"
	rows, err := Read(strings.NewReader(src), zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "", rows[0]["risp"])
}

func TestReadStripsHeaderBOM(t *testing.T) {
	src := "\xef\xbb\xbfmunicipio;cod_municipio;natureza;rmbh;registros;mes;ano;risp\n" +
		"X;1;Y;Sim;1;1;2023;2\n"
	rows, err := Read(strings.NewReader(src), zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, "X", rows[0]["municipio"])
}

func TestReadEmptyInput(t *testing.T) {
	_, err := Read(strings.NewReader(""), zerolog.Nop())
	require.Error(t, err)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crimes.csv")
	src := "municipio;cod_municipio;natureza;rmbh;registros;mes;ano;risp\n" +
		"Contagem;0002;Furto;Sim;3;6;2023;1\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))
	rows, err := ReadFile(path, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	_, err = ReadFile(filepath.Join(t.TempDir(), "absent.csv"), zerolog.Nop())
	require.Error(t, err)
}
