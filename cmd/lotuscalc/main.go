// Package main provides the CLI entry point for lotuscalc.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/javajack/lotuscalc"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

const historyFile = ".lotuscalc_history"

var (
	evalFile     string
	convertSheet string
	showFormulas bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lotuscalc",
		Short: "Spreadsheet formula engine with 1-2-3 semantics",
		Long: `lotuscalc evaluates spreadsheet formulas, recalculates dependency graphs
incrementally, and converts between its native JSON format, delimited text,
and .xlsx workbooks.`,
		SilenceUsage: true,
	}

	evalCmd := &cobra.Command{
		Use:   "eval [formula]",
		Short: "Evaluate a formula and print the result",
		Args:  cobra.ExactArgs(1),
		RunE:  runEval,
	}
	evalCmd.Flags().StringVarP(&evalFile, "file", "f", "", "Sheet file to evaluate against (default: empty sheet)")

	convertCmd := &cobra.Command{
		Use:   "convert [input] [output]",
		Short: "Convert between sheet file formats",
		Long: `convert reads the input and writes the output, picking each format by
extension: .json and .json.gz are the native format, .csv and .tsv are
delimited text, .xlsx is an Excel workbook.`,
		Args: cobra.ExactArgs(2),
		RunE: runConvert,
	}
	convertCmd.Flags().StringVar(&convertSheet, "sheet", "", "Worksheet to read from an .xlsx input (default: active sheet)")

	showCmd := &cobra.Command{
		Use:   "show [file]",
		Short: "Print the used range with computed values",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
	showCmd.Flags().BoolVar(&showFormulas, "formulas", false, "Show cell contents instead of computed values")

	replCmd := &cobra.Command{
		Use:   "repl [file]",
		Short: "Interactive formula session",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRepl,
	}

	rootCmd.AddCommand(evalCmd, convertCmd, showCmd, replCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadSheet reads any supported file into a fresh sheet. The xlsxSheet
// argument selects a worksheet for .xlsx inputs and is ignored otherwise.
func loadSheet(path, xlsxSheet string) (*lotuscalc.Sheet, *lotuscalc.XlsxImportWarnings, error) {
	s := lotuscalc.NewSheet()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		warnings, err := s.ImportXLSX(path, xlsxSheet)
		return s, warnings, err
	case ".csv", ".tsv":
		_, err := s.ImportTextFile(path)
		return s, nil, err
	default:
		return s, nil, s.LoadFile(path)
	}
}

func saveSheet(s *lotuscalc.Sheet, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return s.ExportXLSX(path)
	case ".csv", ".tsv":
		_, err := s.ExportTextFile(path)
		return err
	default:
		return s.SaveFile(path)
	}
}

func reportWarnings(warnings *lotuscalc.XlsxImportWarnings) {
	if warnings.HasWarnings() {
		fmt.Fprintln(os.Stderr, warnings.Message())
	}
}

func runEval(cmd *cobra.Command, args []string) error {
	s := lotuscalc.NewSheet()
	if evalFile != "" {
		loaded, warnings, err := loadSheet(evalFile, "")
		if err != nil {
			return err
		}
		reportWarnings(warnings)
		s = loaded
	}
	fmt.Println(s.Evaluator().Evaluate(bareFormula(args[0])).String())
	return nil
}

// bareFormula strips the leading "=" or "@" marker users habitually type.
func bareFormula(text string) string {
	text = strings.TrimSpace(text)
	if text != "" && (text[0] == '=' || text[0] == '@') {
		return text[1:]
	}
	return text
}

func runConvert(cmd *cobra.Command, args []string) error {
	s, warnings, err := loadSheet(args[0], convertSheet)
	if err != nil {
		return err
	}
	reportWarnings(warnings)
	s.Recalculate()
	if err := saveSheet(s, args[1]); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%d cells)\n", args[1], s.CellCount())
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	s, warnings, err := loadSheet(args[0], "")
	if err != nil {
		return err
	}
	reportWarnings(warnings)
	s.Recalculate()
	rng, ok := s.UsedRange()
	if !ok {
		fmt.Println("(empty sheet)")
		return nil
	}
	printGrid(os.Stdout, s, rng, showFormulas)
	return nil
}

// printGrid renders a range as a padded table with column letters across
// the top and row numbers down the left.
func printGrid(w io.Writer, s *lotuscalc.Sheet, rng lotuscalc.RangeRef, formulas bool) {
	start, end := rng.Start.Coord(), rng.End.Coord()
	texts := make(map[lotuscalc.Coord]string)
	widths := make([]int, end.Col-start.Col+1)
	for col := start.Col; col <= end.Col; col++ {
		widths[col-start.Col] = len(lotuscalc.ColToName(col))
	}
	for row := start.Row; row <= end.Row; row++ {
		for col := start.Col; col <= end.Col; col++ {
			coord := lotuscalc.Coord{Row: row, Col: col}
			text := s.FittedText(coord)
			if formulas {
				text = s.CellAt(coord).Contents()
			}
			texts[coord] = text
			if len(text) > widths[col-start.Col] {
				widths[col-start.Col] = len(text)
			}
		}
	}

	rowLabel := len(strconv.Itoa(end.Row + 1))
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", rowLabel))
	for col := start.Col; col <= end.Col; col++ {
		fmt.Fprintf(&b, "  %-*s", widths[col-start.Col], lotuscalc.ColToName(col))
	}
	fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	for row := start.Row; row <= end.Row; row++ {
		b.Reset()
		fmt.Fprintf(&b, "%*d", rowLabel, row+1)
		for col := start.Col; col <= end.Col; col++ {
			fmt.Fprintf(&b, "  %-*s", widths[col-start.Col], texts[lotuscalc.Coord{Row: row, Col: col}])
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
}

const replHelp = `Cell entry:
  A1=10          store a number in A1
  A1=hello       store a label in A1
  A1==B1*2       store a formula in A1 (everything after the first = is
                 the cell's contents, so =, + or @ starts a formula)
Bare input evaluates as a formula against the sheet.

Commands:
  :set mode [automatic|manual]          recalculation mode
  :set order [natural|column|row]       recalculation order
  :recalc                               recalculate now
  :names                                list named ranges
  :show                                 print the used range
  :save [file]                          write the sheet
  :quit                                 exit
`

func runRepl(cmd *cobra.Command, args []string) error {
	s := lotuscalc.NewSheet()
	if len(args) == 1 {
		loaded, warnings, err := loadSheet(args[0], "")
		if err != nil {
			return err
		}
		reportWarnings(warnings)
		s = loaded
	}

	fmt.Println("lotuscalc REPL. A1=value assigns, bare input evaluates as a formula.")
	fmt.Println("Ctrl+C cancels input, Ctrl+D exits. Type :help for commands.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		line, err := ln.Prompt("> ")
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return nil
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)

		if strings.HasPrefix(line, ":") {
			if quit := replCommand(s, line); quit {
				return nil
			}
			continue
		}
		replInput(s, line)
	}
}

// replInput stores "REF=contents" lines and evaluates everything else.
func replInput(s *lotuscalc.Sheet, line string) {
	if ref, raw, ok := splitAssignment(line); ok {
		if err := s.SetCell(ref, raw); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
		coord, _ := lotuscalc.ParseCoord(ref)
		fmt.Printf("%s: %s\n", strings.ToUpper(ref), s.DisplayText(coord))
		return
	}
	fmt.Println(s.Evaluator().Evaluate(bareFormula(line)).String())
}

// splitAssignment recognizes lines of the form "A1=...". The left side must
// be a bare cell reference; anything else evaluates as a formula. An
// equality test against a cell has to be parenthesized, "(A1=B1)", or the
// line reads as an assignment.
func splitAssignment(line string) (ref, raw string, ok bool) {
	i := strings.IndexByte(line, '=')
	if i <= 0 {
		return "", "", false
	}
	left := strings.TrimSpace(line[:i])
	if _, err := lotuscalc.ParseCoord(left); err != nil {
		return "", "", false
	}
	return left, strings.TrimSpace(line[i+1:]), true
}

func replCommand(s *lotuscalc.Sheet, line string) (quit bool) {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case ":quit", ":q", ":exit":
		return true
	case ":help", ":h":
		fmt.Print(replHelp)
	case ":set":
		replSet(s, fields[1:])
	case ":recalc":
		stats := s.Recalculate()
		fmt.Printf("recalculated %d cells in %s", stats.CellsEvaluated, stats.Elapsed)
		if stats.CircularRefsFound > 0 {
			fmt.Printf(" (%d circular)", stats.CircularRefsFound)
		}
		if stats.ErrorsFound > 0 {
			fmt.Printf(" (%d errors)", stats.ErrorsFound)
		}
		fmt.Println()
	case ":names":
		names := s.Names().List()
		if len(names) == 0 {
			fmt.Println("(no named ranges)")
			break
		}
		for _, nr := range names {
			fmt.Printf("%-16s %s\n", nr.Name, nr.Ref())
		}
	case ":show":
		if rng, ok := s.UsedRange(); ok {
			printGrid(os.Stdout, s, rng, false)
		} else {
			fmt.Println("(empty sheet)")
		}
	case ":save":
		path := s.Filename()
		if len(fields) > 1 {
			path = fields[1]
		}
		if path == "" {
			fmt.Fprintln(os.Stderr, "no filename; use :save <file>")
			break
		}
		if err := saveSheet(s, path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			break
		}
		fmt.Printf("Wrote %s\n", path)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %s (:help for help)\n", fields[0])
	}
	return false
}

func replSet(s *lotuscalc.Sheet, args []string) {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: :set mode|order <value>")
		return
	}
	switch strings.ToLower(args[0]) {
	case "mode":
		mode, err := lotuscalc.ParseRecalcMode(args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
		s.SetRecalcMode(mode)
		fmt.Printf("recalculation mode %s\n", mode)
	case "order":
		order, err := lotuscalc.ParseRecalcOrder(args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
		s.SetRecalcOrder(order)
		fmt.Printf("recalculation order %s\n", order)
	default:
		fmt.Fprintf(os.Stderr, "unknown setting %q\n", args[0])
	}
}
