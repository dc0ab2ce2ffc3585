// Command idlesim inspects a save and plays the economy forward offline,
// for balance work.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/khwan789/KimchiClicker/internal/clock"
	"github.com/khwan789/KimchiClicker/internal/config"
	"github.com/khwan789/KimchiClicker/internal/economy"
	"github.com/khwan789/KimchiClicker/internal/engine"
	"github.com/khwan789/KimchiClicker/internal/persist"
	"github.com/khwan789/KimchiClicker/internal/rpc"
)

var (
	bold   = color.New(color.Bold).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

func main() {
	app := cli.NewApp()
	app.Name = "idlesim"
	app.Usage = "inspect and simulate Kimchi Clicker saves"
	app.Version = "0.2.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "config", Usage: "balance override YAML"},
		cli.StringFlag{Name: "data-dir", Usage: "save directory (default: platform data dir)", EnvVar: "KIMCHI_DATA_DIR"},
		cli.BoolFlag{Name: "verbose", Usage: "log engine activity"},
	}
	app.Commands = []cli.Command{
		{
			Name:   "show",
			Usage:  "print the stored run",
			Action: showCmd,
		},
		{
			Name:  "simulate",
			Usage: "play the stored run forward",
			Flags: []cli.Flag{
				cli.Float64Flag{Name: "seconds", Value: 3600, Usage: "play time to simulate"},
				cli.Float64Flag{Name: "taps", Usage: "taps per second"},
				cli.BoolFlag{Name: "autobuy", Usage: "buy the cheapest affordable producer every second"},
				cli.BoolFlag{Name: "write", Usage: "save the result over the stored run"},
			},
			Action: simulateCmd,
		},
		{
			Name:  "costs",
			Usage: "print a producer's cost curve",
			Flags: []cli.Flag{
				cli.IntFlag{Name: "producer", Usage: "producer index"},
				cli.IntFlag{Name: "levels", Value: 25, Usage: "levels to print"},
			},
			Action: costsCmd,
		},
		{
			Name:  "reset",
			Usage: "delete the stored run",
			Flags: []cli.Flag{
				cli.BoolFlag{Name: "yes", Usage: "confirm"},
			},
			Action: resetCmd,
		},
		{
			Name:      "remote",
			Usage:     "talk to a running server over gRPC",
			ArgsUsage: "state | plan TARGET | CMD [INDEX]",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "addr", Value: "localhost:7070"},
			},
			Action: remoteCmd,
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func logger(c *cli.Context) *slog.Logger {
	if c.GlobalBool("verbose") {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func open(c *cli.Context) (config.Balance, *persist.FileStore, error) {
	bal, err := config.Load(c.GlobalString("config"))
	if err != nil {
		return config.Balance{}, nil, err
	}
	dir := c.GlobalString("data-dir")
	if dir == "" {
		dir = bal.Persistence.Dir
	}
	fs, err := persist.NewFileStore(dir, bal.Persistence.File, bal.Persistence.Compress)
	return bal, fs, err
}

// scratch loads the stored run into an in-memory store so nothing is written
// back unless asked.
func scratch(c *cli.Context, bal config.Balance, fs *persist.FileStore, clk clock.Clock) (*engine.Engine, error) {
	mem := persist.NewMemoryStore()
	rec, err := fs.Load()
	switch {
	case err == nil:
		if err := mem.Save(rec); err != nil {
			return nil, err
		}
	case !errors.Is(err, persist.ErrNotFound):
		fmt.Fprintln(os.Stderr, red("stored run unreadable:"), err)
	}
	eng := engine.New(bal, mem, engine.WithLogger(logger(c)), engine.WithClock(clk))
	if err := eng.Load(); err != nil && !errors.Is(err, engine.ErrSaveRecovered) {
		return nil, err
	}
	return eng, nil
}

func showCmd(c *cli.Context) error {
	bal, fs, err := open(c)
	if err != nil {
		return err
	}
	eng, err := scratch(c, bal, fs, clock.Real{})
	if err != nil {
		return err
	}
	fmt.Println(faint(fs.Path()))
	printSnapshot(os.Stdout, eng.Snapshot())
	return nil
}

func simulateCmd(c *cli.Context) error {
	bal, fs, err := open(c)
	if err != nil {
		return err
	}
	clk := clock.NewFake(time.Now())
	eng, err := scratch(c, bal, fs, clk)
	if err != nil {
		return err
	}
	rep := autoplay(eng, clk, plan{
		Seconds:     c.Float64("seconds"),
		TapsPerSec:  c.Float64("taps"),
		AutoBuy:     c.Bool("autobuy"),
		StepSeconds: 1 / float64(max(bal.TickHz, 1)),
	})
	printSnapshot(os.Stdout, eng.Snapshot())
	fmt.Printf("\n%s %s simulated, %d taps, %d producer levels bought, %d stages unlocked\n",
		bold("done:"), time.Duration(rep.Seconds*float64(time.Second)), rep.Taps, rep.Bought, rep.Unlocked)

	if c.Bool("write") {
		if err := fs.Save(persist.FromState(eng.State(), time.Now())); err != nil {
			return err
		}
		fmt.Println(green("saved"), fs.Path())
	}
	return nil
}

func costsCmd(c *cli.Context) error {
	bal, err := config.Load(c.GlobalString("config"))
	if err != nil {
		return err
	}
	i := c.Int("producer")
	if i < 0 || i >= len(bal.Defs.Producers) {
		return fmt.Errorf("producer %d out of range [0,%d)", i, len(bal.Defs.Producers))
	}
	g := economy.NewGame(&bal.Defs)
	fmt.Println(bold(bal.Defs.Producers[i].Name))
	for l := 0; l < c.Int("levels"); l++ {
		g.State.Producers[i].Level = l
		fmt.Printf("%4d  %10s  %s\n", l+1, g.ProducerCost(i, 1), faint("+"+g.PurchaseDelta(i, 1).String()+"/s"))
	}
	return nil
}

func resetCmd(c *cli.Context) error {
	_, fs, err := open(c)
	if err != nil {
		return err
	}
	if !c.Bool("yes") {
		return fmt.Errorf("refusing to delete %s without --yes", fs.Path())
	}
	if err := fs.Delete(); err != nil {
		return err
	}
	fmt.Println(yellow("deleted"), fs.Path())
	return nil
}

func remoteCmd(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.ShowCommandHelp(c, "remote")
	}
	cc, err := grpc.NewClient(c.String("addr"), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return err
	}
	defer cc.Close()
	client := rpc.NewClient(cc)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	args := c.Args()
	switch args.First() {
	case "state":
		st, err := client.State(ctx)
		if err != nil {
			return err
		}
		fmt.Println(protojson.Format(st))
	case "plan":
		var target int
		if _, err := fmt.Sscan(args.Get(1), &target); err != nil {
			return fmt.Errorf("plan needs a key target: %w", err)
		}
		p, err := client.Plan(ctx, target)
		if err != nil {
			return err
		}
		fmt.Println(protojson.Format(p))
	default:
		var a engine.Args
		if s := args.Get(1); s != "" {
			if _, err := fmt.Sscan(s, &a.Index); err != nil {
				return fmt.Errorf("bad index %q: %w", s, err)
			}
		}
		applied, _, err := client.Command(ctx, args.First(), a)
		if err != nil {
			return err
		}
		if applied {
			fmt.Println(green("applied"), args.First())
		} else {
			fmt.Println(yellow("no change"), args.First())
		}
	}
	return nil
}
