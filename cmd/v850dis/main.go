// v850dis - disassembler, lifter and control-flow explorer for V850
// firmware images.
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
	"github.com/xlab/treeprint"

	"github.com/colorfulnotion/v850/log"
	"github.com/colorfulnotion/v850/v850"
)

var (
	Version = "dev"
	Commit  = "none"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "v850dis",
		Short: "V850 firmware disassembler",
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	var (
		revision string
		baseStr  string
		hexCode  string
		logLevel string
		debug    string
	)

	rootCmd.PersistentFlags().StringVar(&revision, "rev", "e2", "architecture revision (e, e2)")
	rootCmd.PersistentFlags().StringVar(&baseStr, "base", "0x0", "load address of the image")
	rootCmd.PersistentFlags().StringVar(&hexCode, "hex", "", "inline hex bytes instead of a file argument")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&debug, "debug", "", "comma-separated log modules to enable")

	setup := func() (*v850.Arch, uint32, error) {
		log.InitLogger(logLevel)
		log.EnableModules(debug)

		var arch *v850.Arch
		switch strings.ToLower(revision) {
		case "e":
			arch = v850.NewV850E()
		case "e2":
			arch = v850.NewV850E2()
		default:
			return nil, 0, fmt.Errorf("unknown revision %q", revision)
		}

		base, err := hexutil.DecodeUint64(baseStr)
		if err != nil {
			return nil, 0, fmt.Errorf("bad base address %q: %v", baseStr, err)
		}
		return arch, uint32(base), nil
	}

	loadCode := func(args []string) ([]byte, error) {
		if hexCode != "" {
			return hex.DecodeString(strings.ReplaceAll(hexCode, " ", ""))
		}
		if len(args) != 1 {
			return nil, fmt.Errorf("expected one image file argument (or --hex)")
		}
		return os.ReadFile(args[0])
	}

	var disasmCmd = &cobra.Command{
		Use:   "disasm [image]",
		Short: "Linear disassembly of an image",
		RunE: func(cmd *cobra.Command, args []string) error {
			arch, base, err := setup()
			if err != nil {
				return err
			}
			code, err := loadCode(args)
			if err != nil {
				return err
			}
			addr := base
			for int(addr-base) < len(code) {
				off := addr - base
				inst, err := arch.Decode(code[off:], addr)
				if err != nil {
					fmt.Printf("%08x:  %v\n", addr, err)
					break
				}
				fmt.Printf("%08x:  %s\n", addr, arch.Render(inst, addr))
				addr += uint32(inst.Length)
			}
			return nil
		},
	}

	var irCmd = &cobra.Command{
		Use:   "ir [image]",
		Short: "Lift an image to IR operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			arch, base, err := setup()
			if err != nil {
				return err
			}
			code, err := loadCode(args)
			if err != nil {
				return err
			}
			addr := base
			for int(addr-base) < len(code) {
				off := addr - base
				inst, err := arch.Decode(code[off:], addr)
				if err != nil {
					fmt.Printf("%08x:  %v\n", addr, err)
					break
				}
				ops, err := arch.Lift(inst, addr, nil)
				if err != nil {
					return err
				}
				fmt.Printf("%08x:  %s\n", addr, arch.Render(inst, addr))
				for _, op := range ops {
					fmt.Printf("            %s\n", op)
				}
				addr += uint32(inst.Length)
			}
			return nil
		},
	}

	var cfgCmd = &cobra.Command{
		Use:   "cfg [image]",
		Short: "Scan basic blocks and print the control-flow tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			arch, base, err := setup()
			if err != nil {
				return err
			}
			code, err := loadCode(args)
			if err != nil {
				return err
			}
			blocks := arch.ScanBlocks(code, base, base)
			log.Info(log.CFGMonitoring, "scanned blocks", "count", len(blocks))

			tree := treeprint.NewWithRoot(fmt.Sprintf("cfg @ %s", hexutil.EncodeUint64(uint64(base))))
			for _, bb := range blocks {
				node := tree.AddBranch(bb.String())
				for _, bi := range bb.Instructions {
					node.AddNode(fmt.Sprintf("%08x:  %s", bi.Addr, arch.Render(bi.Inst, bi.Addr)))
				}
				for _, e := range bb.Edges {
					if e.HasTarget {
						node.AddMetaBranch(e.Kind.String(), fmt.Sprintf("-> %#x", e.Target))
					} else {
						node.AddMetaBranch(e.Kind.String(), "-> ?")
					}
				}
				if bb.Err != nil {
					node.AddMetaBranch("error", bb.Err.Error())
				}
			}
			fmt.Print(tree.String())
			return nil
		},
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("v850dis %s (%s)\n", Version, Commit)
		},
	}

	rootCmd.AddCommand(disasmCmd, irCmd, cfgCmd, versionCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
