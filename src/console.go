package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	log "github.com/sirupsen/logrus"

	"lolplayer/src/player"
)

var errQuit = errors.New("quit")

const consoleHelp = `Commands:
  ls          list the playlist
  play N      play track N
  next        play the next track
  prev        play the previous track
  pause       toggle pause
  stop        stop playback
  load DIR    load the audio files in DIR
  status      show what is playing
  quit        exit`

// runConsole reads commands from the terminal until the user quits or ctx is
// done.
func runConsole(ctx context.Context, ctrl *player.Controller) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt: "> ",
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem("ls"),
			readline.PcItem("play"),
			readline.PcItem("next"),
			readline.PcItem("prev"),
			readline.PcItem("pause"),
			readline.PcItem("stop"),
			readline.PcItem("load", readline.PcItemDynamic(listDirs)),
			readline.PcItem("status"),
			readline.PcItem("help"),
			readline.PcItem("quit"),
		),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		rl.Close()
	}()
	go announceTracks(ctx, ctrl, rl.Stdout())

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		} else if err != nil {
			// EOF or the console was closed.
			return nil
		}

		if err := runCommand(ctx, ctrl, line, rl.Stdout()); errors.Is(err, errQuit) {
			return nil
		} else if err != nil {
			fmt.Fprintf(rl.Stderr(), "error: %v\n", err)
		}
	}
}

// announceTracks prints every track that starts playing.
func announceTracks(ctx context.Context, ctrl *player.Controller, out io.Writer) {
	for event := range ctrl.Events().Listen(ctx) {
		switch t := event.(type) {
		case player.TrackEvent:
			if track, ok := ctrl.CurrentTrack(); ok && track.Index == t.Index {
				fmt.Fprintf(out, "Now playing: %s\n", track)
			}
		case player.ErrorEvent:
			fmt.Fprintf(out, "Could not play %s\n", filepath.Base(t.Path))
		}
	}
}

// runCommand executes a single console command. Track numbers are 1-based as
// they are shown by ls.
func runCommand(ctx context.Context, ctrl *player.Controller, line string, out io.Writer) error {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "":
		return nil
	case "ls":
		status := ctrl.Status()
		for _, track := range ctrl.Playlist() {
			marker := " "
			if track.Index == status.Index {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %s\n", marker, track)
		}
		return nil
	case "play":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("invalid track number %q", arg)
		}
		if n < 1 || n > len(ctrl.Playlist()) {
			return fmt.Errorf("no track %d", n)
		}
		return ctrl.PlayIndex(n - 1)
	case "next":
		return ctrl.Next()
	case "prev", "previous":
		return ctrl.Previous()
	case "pause", "toggle":
		return ctrl.TogglePause()
	case "stop":
		return ctrl.Stop()
	case "load":
		if arg == "" {
			return fmt.Errorf("usage: load DIR")
		}
		dir, err := filepath.Abs(expandHome(arg))
		if err != nil {
			return err
		}
		if err := ctrl.LoadLibrary(ctx, dir); err != nil {
			return err
		}
		fmt.Fprintf(out, "Loaded %d tracks\n", len(ctrl.Playlist()))
		return nil
	case "status":
		status := ctrl.Status()
		state := "stopped"
		if status.Playing {
			state = "playing"
		} else if status.Paused {
			state = "paused"
		}
		if track, ok := ctrl.CurrentTrack(); ok {
			fmt.Fprintf(out, "%s: %s\n", state, track)
		} else {
			fmt.Fprintf(out, "%s, %d tracks in %s\n", state, status.Length, status.Directory)
		}
		return nil
	case "help":
		fmt.Fprintln(out, consoleHelp)
		return nil
	case "quit", "exit":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q, try help", cmd)
	}
}

func listDirs(line string) []string {
	_, arg, _ := strings.Cut(line, " ")
	dir := filepath.Dir(arg)
	entries, err := os.ReadDir(expandHome(dir))
	if err != nil {
		log.Debugf("Could not complete %q: %v", line, err)
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := filepath.Join(dir, e.Name()) + string(filepath.Separator)
		if strings.HasPrefix(name, arg) {
			names = append(names, name)
		}
	}
	return names
}
