package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/dynshape"
	"github.com/wippyai/dynshape/dynamic"
	"github.com/wippyai/dynshape/schema"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app carries state shared by every subcommand.
type app struct {
	cfgFile string
	cfg     *Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "shapectl",
		Short: "Decode, inspect and re-encode fixed-width binary values",
		Long: `shapectl reads values in the bincode fixed-width framing using a schema
file (JSON or YAML), renders them as trees or JSON, and writes them back
byte for byte.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(a.cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			a.cfg = cfg
			if cfg.Verbose {
				l, err := zap.NewDevelopment()
				if err != nil {
					return fmt.Errorf("create logger: %w", err)
				}
				dynshape.SetLogger(l)
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default ./shapectl.yaml)")
	pf.String("byte-order", "little", "integer byte order: little or big")
	pf.Bool("allow-trailing-bytes", true, "ignore input left over after the value")
	pf.Uint64("limit", 0, "maximum bytes read or written per value (0 = unlimited)")
	pf.String("color", "auto", "colored output: auto, always or never")
	pf.BoolP("verbose", "v", false, "debug logging to stderr")

	root.AddCommand(
		a.schemaCmd(),
		a.decodeCmd(),
		a.encodeCmd(),
		a.inspectCmd(),
		newVersionCmd(),
	)
	return root
}

func (a *app) schemaCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "schema FILE",
		Short: "Load a schema file and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSchema(args[0])
			if err != nil {
				return err
			}
			out, err := formatSchema(s, format)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json, yaml or wit")
	return cmd
}

func (a *app) decodeCmd() *cobra.Command {
	var (
		schemaFile string
		asJSON     bool
		hexInput   bool
	)
	cmd := &cobra.Command{
		Use:   "decode DATA",
		Short: "Decode a value and print it",
		Long:  "Decode DATA (a file, or - for stdin) with the schema and print the value tree.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSchema(schemaFile)
			if err != nil {
				return err
			}
			data, err := readData(cmd.InOrStdin(), args[0], hexInput)
			if err != nil {
				return err
			}
			v, err := dynshape.Decode(s, data, dynshape.WithOptions(a.cfg.Options()))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				b, err := v.MarshalJSON()
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(b))
				return nil
			}
			fmt.Fprintln(out, printer{styled: colorEnabled(a.cfg.Color, out)}.Tree(v))
			return nil
		},
	}
	cmd.Flags().StringVarP(&schemaFile, "schema", "s", "", "schema file (.json, .yaml)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the JSON projection instead of a tree")
	cmd.Flags().BoolVar(&hexInput, "hex", false, "DATA holds hex text rather than raw bytes")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

func (a *app) encodeCmd() *cobra.Command {
	var (
		schemaFile string
		output     string
		hexOutput  bool
	)
	cmd := &cobra.Command{
		Use:   "encode VALUE.json",
		Short: "Encode a JSON value",
		Long:  "Build a value from its JSON projection (a file, or - for stdin) and write its encoding.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSchema(schemaFile)
			if err != nil {
				return err
			}
			raw, err := readData(cmd.InOrStdin(), args[0], false)
			if err != nil {
				return err
			}
			v, err := dynamic.FromJSON(s, raw)
			if err != nil {
				return err
			}
			data, err := dynshape.Encode(v, dynshape.WithOptions(a.cfg.Options()))
			if err != nil {
				return err
			}
			if hexOutput {
				data = []byte(hex.EncodeToString(data) + "\n")
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(output, data, 0o644)
		},
	}
	cmd.Flags().StringVarP(&schemaFile, "schema", "s", "", "schema file (.json, .yaml)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&hexOutput, "hex", false, "write hex text rather than raw bytes")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

func (a *app) inspectCmd() *cobra.Command {
	var schemaFile string
	cmd := &cobra.Command{
		Use:   "inspect DATA",
		Short: "Browse and edit a value interactively",
		Long:  "Browse the value in DATA, edit leaves in place and press w to write the re-encoded bytes back.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSchema(schemaFile)
			if err != nil {
				return err
			}
			return runInspect(s, args[0], a.cfg.Options())
		},
	}
	cmd.Flags().StringVarP(&schemaFile, "schema", "s", "", "schema file (.json, .yaml)")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

func loadSchema(path string) (*schema.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return schema.ParseFile(path, data)
}

// readData reads path, or stdin for "-". Hex input may contain whitespace.
func readData(stdin io.Reader, path string, isHex bool) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	if !isHex {
		return data, nil
	}
	out, err := hex.DecodeString(strings.Join(strings.Fields(string(data)), ""))
	if err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	return out, nil
}
