// objtool is a CLI utility for inspecting and resolving Wavefront OBJ models.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/objtool/internal/config"
	"github.com/Faultbox/objtool/internal/logger"
	"github.com/Faultbox/objtool/internal/scene"
	"github.com/Faultbox/objtool/internal/watch"
	"github.com/Faultbox/objtool/pkg/formats"
	"github.com/Faultbox/objtool/pkg/geometry"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "info":
		err = cmdInfo(args)
	case "resolve":
		err = cmdResolve(args)
	case "watch":
		err = cmdWatch(args)
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`objtool - Wavefront OBJ model utility

Usage:
  objtool <command> [options] <file.obj>

Commands:
  info <file.obj>       Show objects, groups and attribute counts
  resolve <file.obj>    Resolve the model into meshes and show submeshes
  watch <file.obj>      Resolve again whenever the file changes

Options (all commands):
  -config <path>        Config file (.yaml or .toml)
  -debug                Enable debug logging
  -encoding <name>      Name encoding (utf-8, euc-kr, shift-jis, latin1)
  -strict-materials     Fail on materials no .mtl defines
  -log <path>           Also write logs to a rotating file

Examples:
  objtool info crate.obj
  objtool resolve -strict-materials crate.obj
  objtool watch -debug crate.obj`)
}

// setup parses the shared flags and initializes config and logging.
func setup(name string, args []string) (*config.Config, string, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	fs.Parse(args)

	if fs.NArg() < 1 {
		return nil, "", fmt.Errorf("usage: objtool %s [options] <file.obj>", name)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return nil, "", err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, "", fmt.Errorf("initializing logger: %w", err)
	}
	logger.Sugar.Debugf("Config: %+v", cfg)
	return cfg, fs.Arg(0), nil
}

func cmdInfo(args []string) error {
	cfg, path, err := setup("info", args)
	if err != nil {
		return err
	}

	buf := geometry.NewBuffer()
	info, err := formats.LoadOBJ(path, buf, formats.OBJOptions{Encoding: cfg.Model.Encoding})
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	fmt.Printf("Model:     %s\n", path)
	fmt.Printf("Lines:     %d\n", info.Lines)
	fmt.Printf("Triangles: %d\n", info.Triangles)
	if len(info.MaterialLibraries) > 0 {
		fmt.Printf("Libraries: %v\n", info.MaterialLibraries)
	}
	fmt.Println()
	fmt.Println(buf.Summary())

	if buf.IsEmpty() {
		logger.Warn("model has no vertices", zap.String("path", path))
	}
	return nil
}

func cmdResolve(args []string) error {
	cfg, path, err := setup("resolve", args)
	if err != nil {
		return err
	}
	return resolveAndPrint(path, cfg.Model)
}

func resolveAndPrint(path string, cfg config.ModelConfig) error {
	sc, buf, err := scene.LoadFile(path, cfg)
	if err != nil {
		return err
	}

	logger.Info("resolved model",
		zap.String("path", path),
		zap.Int("objects", buf.ObjectCount()),
		zap.Int("materials", sc.Materials.Len()))

	for _, node := range sc.Nodes {
		bounds := node.Mesh.Bounds()
		_, _, ranges := node.Mesh.Interleave()

		fmt.Printf("%s  [%s]\n", node.Name, node.ID)
		fmt.Printf("  vertices:  %d", len(node.Mesh.Positions))
		if node.Mesh.TexCoords != nil {
			fmt.Print(" +uv")
		}
		if node.Mesh.Normals != nil {
			fmt.Print(" +normal")
		}
		fmt.Println()
		fmt.Printf("  triangles: %d\n", node.Mesh.TriangleCount())
		fmt.Printf("  bounds:    min %v max %v\n", bounds.Min, bounds.Max)
		for _, r := range ranges {
			mat := node.Mesh.Materials[r.Submesh]
			label := mat.Name
			if mat.Placeholder {
				label += " (placeholder)"
			}
			fmt.Printf("  submesh %d: indices [%d, %d) material %s\n",
				r.Submesh, r.StartIndex, r.StartIndex+r.IndexCount, label)
		}
	}
	return nil
}

func cmdWatch(args []string) error {
	cfg, path, err := setup("watch", args)
	if err != nil {
		return err
	}

	w, err := watch.New(cfg.Watch.Debounce)
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(path); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}

	if err := resolveAndPrint(path, cfg.Model); err != nil {
		logger.Error("resolve failed", zap.String("path", path), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("watching for changes", zap.String("path", path))
	err = w.Run(ctx, func(changed string) {
		fmt.Println()
		if err := resolveAndPrint(changed, cfg.Model); err != nil {
			logger.Error("resolve failed", zap.String("path", changed), zap.Error(err))
		}
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}
