package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"

	"sentinela-mg/core/analytics"
	"sentinela-mg/core/ingest"
)

// LineReader yields one line of user input per call.
type LineReader interface {
	Readline() (string, error)
	Close() error
}

// NewReadlineInput builds the interactive line reader used outside
// tests.
func NewReadlineInput(historyPath string) (LineReader, error) {
	return readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     historyPath,
		InterruptPrompt: "^C",
	})
}

type command struct {
	key   string
	label string
	run   func(*Menu)
}

var commands = []command{
	{key: "1", label: "Crimes por município", run: (*Menu).showTopMunicipalities},
	{key: "2", label: "Crimes por mês", run: (*Menu).showTotalsByMonth},
	{key: "3", label: "Crimes por trimestre", run: (*Menu).showTotalsByQuarter},
	{key: "4", label: "Crimes por tipo", run: (*Menu).showTotalsByType},
}

const exitKey = "5"

// Menu is the blocking interactive surface over the cleaned dataset.
type Menu struct {
	ds    ingest.Dataset
	topN  int
	input LineReader
	out   io.Writer
	log   zerolog.Logger
}

func NewMenu(ds ingest.Dataset, topN int, input LineReader, out io.Writer, logger zerolog.Logger) *Menu {
	return &Menu{ds: ds, topN: topN, input: input, out: out, log: logger}
}

// Run loops until the exit option, EOF or an interrupt. Unknown input
// re-prompts without side effects.
func (m *Menu) Run() error {
	fmt.Fprintln(m.out, "Sentinela MG - estatísticas criminais")
	fmt.Fprintf(m.out, "%d registros no conjunto de dados\n", len(m.ds))
	byKey := make(map[string]command, len(commands))
	for _, c := range commands {
		byKey[c.key] = c
	}
	for {
		m.printOptions()
		line, err := m.input.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				fmt.Fprintln(m.out, "Encerrando.")
				return nil
			}
			return err
		}
		choice := strings.TrimSpace(line)
		if choice == exitKey {
			fmt.Fprintln(m.out, "Encerrando.")
			return nil
		}
		c, ok := byKey[choice]
		if !ok {
			fmt.Fprintln(m.out, "Opção inválida, tente novamente.")
			continue
		}
		m.log.Debug().Str("option", choice).Msg("projection selected")
		c.run(m)
	}
}

func (m *Menu) printOptions() {
	fmt.Fprintln(m.out)
	for _, c := range commands {
		fmt.Fprintf(m.out, "%s - %s\n", c.key, c.label)
	}
	fmt.Fprintf(m.out, "%s - Sair\n", exitKey)
}

func (m *Menu) showTopMunicipalities() {
	buckets := analytics.TopMunicipalities(m.ds, m.topN)
	fmt.Fprintf(m.out, "\nCrimes por município (top %d)\n", m.topN)
	renderTable(m.out, "Município", buckets)
	renderBars(m.out, buckets)
}

func (m *Menu) showTotalsByMonth() {
	buckets := analytics.TotalsByMonth(m.ds)
	fmt.Fprintln(m.out, "\nCrimes por mês")
	renderTable(m.out, "Mês", buckets)
	renderLine(m.out, buckets)
}

func (m *Menu) showTotalsByQuarter() {
	buckets := analytics.TotalsByQuarter(m.ds)
	fmt.Fprintln(m.out, "\nCrimes por trimestre")
	renderTable(m.out, "Trimestre", buckets)
	renderBars(m.out, buckets)
}

func (m *Menu) showTotalsByType() {
	buckets := analytics.TotalsByType(m.ds)
	fmt.Fprintln(m.out, "\nCrimes por tipo")
	renderTable(m.out, "Natureza", buckets)
	renderBars(m.out, buckets)
}
