// Command kbnfrepl is an interactive sandbox for experimenting with a
// grammar: each input line is fed to the engine as one run of bytes, and
// the loop prints how many vocabulary tokens the engine then considers
// valid continuations and whether it is finished. It mirrors the structure
// of the T.REPL tool this module's recognizer was developed alongside: a
// readline-driven loop, pterm for colored status output, and the
// schuko/tracing logging convention, now pointed at the byte-level
// constrained-decoding engine instead of a term-rewriting interpreter.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/chzyer/readline"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	kbnf "github.com/kbnf-go/kbnf"
	"github.com/kbnf-go/kbnf/vocab"
)

// fileConfig is the shape of an optional TOML config file, letting a user
// pin grammar/vocab/start-symbol choices instead of repeating flags.
type fileConfig struct {
	Grammar string `toml:"grammar"`
	Vocab   string `toml:"vocab"`
	Start   string `toml:"start"`
	Trace   string `toml:"trace"`
}

func tracer() tracing.Trace { return gtrace.SyntaxTracer }

func main() {
	var (
		grammarPath string
		vocabPath   string
		configPath  string
		start       string
		traceLevel  string
	)

	root := &cobra.Command{
		Use:   "kbnfrepl",
		Short: "interactive sandbox for the constrained-decoding engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := fileConfig{Start: "start", Trace: "Info"}
			if configPath != "" {
				if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
					return fmt.Errorf("reading config %s: %w", configPath, err)
				}
			}
			if grammarPath != "" {
				cfg.Grammar = grammarPath
			}
			if vocabPath != "" {
				cfg.Vocab = vocabPath
			}
			if start != "" {
				cfg.Start = start
			}
			if traceLevel != "" {
				cfg.Trace = traceLevel
			}
			return run(cfg)
		},
	}
	root.Flags().StringVarP(&grammarPath, "grammar", "g", "", "path to an EBNF grammar file")
	root.Flags().StringVarP(&vocabPath, "vocab", "V", "", "path to a newline-separated token vocabulary file")
	root.Flags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")
	root.Flags().StringVar(&start, "start", "", "start nonterminal (default: start)")
	root.Flags().StringVar(&traceLevel, "trace", "", "trace level: Debug|Info|Error")

	if err := root.Execute(); err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
}

func run(cfg fileConfig) error {
	gtrace.SyntaxTracer = gologadapter.New()
	tracer().SetTraceLevel(tracing.TraceLevelFromString(cfg.Trace))
	pterm.Info.Println("Welcome to kbnfrepl")

	if cfg.Grammar == "" {
		return fmt.Errorf("no grammar file given (use --grammar or a config file)")
	}
	src, err := os.ReadFile(cfg.Grammar)
	if err != nil {
		return fmt.Errorf("reading grammar: %w", err)
	}
	tokens, eos, err := loadVocab(cfg.Vocab)
	if err != nil {
		return fmt.Errorf("reading vocabulary: %w", err)
	}

	econf := kbnf.DefaultConfig()
	econf.StartNonterminal = cfg.Start
	engine, err := kbnf.New(string(src), tokens, eos, econf)
	if err != nil {
		return fmt.Errorf("constructing engine: %w", err)
	}

	repl, err := readline.New("kbnf> ")
	if err != nil {
		return err
	}
	defer repl.Close()
	tracer().Infof("Quit with <ctrl>D")

	for {
		line, err := repl.Readline()
		if err != nil {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := handleLine(engine, line); err != nil {
			pterm.Error.Println(err.Error())
		}
	}
	pterm.Info.Println("Good bye!")
	return nil
}

func handleLine(engine *kbnf.Engine, line string) error {
	if err := engine.TryAcceptNewBytes([]byte(line)); err != nil {
		return err
	}
	allowed, err := engine.ComputeAllowedTokenIDs()
	if err != nil {
		return err
	}
	pterm.Success.Printf("accepted %d bytes; %d tokens now allowed; finished=%v\n",
		len(line), len(allowed), engine.IsFinished())
	return nil
}

// loadVocab reads one token per line, taking each line's bytes as they are
// (no escape sequences are decoded). A line of the form "#eos=N", anywhere
// in the file, names the end-of-sequence token id instead of adding a token.
func loadVocab(path string) ([][]byte, vocab.TokenID, error) {
	if path == "" {
		return defaultVocab(), 0, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	var tokens [][]byte
	eos := vocab.TokenID(0)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "#eos=") {
			n, err := strconv.Atoi(strings.TrimPrefix(line, "#eos="))
			if err != nil {
				return nil, 0, fmt.Errorf("bad #eos directive %q: %w", line, err)
			}
			eos = vocab.TokenID(n)
			continue
		}
		tokens = append(tokens, []byte(line))
	}
	if err := sc.Err(); err != nil {
		return nil, 0, err
	}
	return tokens, eos, nil
}

func defaultVocab() [][]byte {
	var tokens [][]byte
	for b := 0; b < 256; b++ {
		tokens = append(tokens, []byte{byte(b)})
	}
	return tokens
}
