package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"notedown/internal/client"
	"notedown/internal/editor"
)

// notectl is a line-oriented client for the note service. It drives
// the same sync engine the browser editor uses: edits are debounced,
// switching or deleting notes flushes or cancels pending writes.
func main() {
	addr := flag.String("addr", "http://localhost:3000", "note service base URL")
	flag.Parse()

	stdin := bufio.NewScanner(os.Stdin)

	confirm := func(noteID string) bool {
		fmt.Printf("delete %s? [y/N] ", noteID)
		if !stdin.Scan() {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(stdin.Text()))
		return answer == "y" || answer == "yes"
	}

	api := client.New(*addr)
	d := editor.NewDispatcher(api, confirm, func(err error) {
		log.Printf("sync error: %v", err)
	}, editor.DefaultDebounceDelay)

	ctx := context.Background()

	if err := d.Refresh(ctx); err != nil {
		log.Fatalf("Failed to load notes from %s: %v", *addr, err)
	}

	fmt.Println("notedown client - type 'help' for commands")
	printList(d)

	for {
		fmt.Print("> ")
		if !stdin.Scan() {
			break
		}
		line := strings.TrimSpace(stdin.Text())
		if line == "" {
			continue
		}

		cmd, arg, _ := strings.Cut(line, " ")
		switch cmd {
		case "help":
			fmt.Println("ls            list notes")
			fmt.Println("new           create a note and open it")
			fmt.Println("open <n>      open the nth listed note")
			fmt.Println("type <text>   append a line to the open note")
			fmt.Println("show          print the open note's buffer")
			fmt.Println("html          print the open note rendered to HTML")
			fmt.Println("save          force an immediate save")
			fmt.Println("del <n>       delete the nth listed note (asks first)")
			fmt.Println("quit          save and exit")

		case "ls":
			if err := d.Refresh(ctx); err != nil {
				log.Printf("refresh failed: %v", err)
				continue
			}
			printList(d)

		case "new":
			note, err := d.CreateNote(ctx)
			if err != nil {
				log.Printf("create failed: %v", err)
				continue
			}
			fmt.Printf("opened new note %s\n", note.ID)

		case "open":
			entry, ok := entryAt(d, arg)
			if !ok {
				continue
			}
			if err := d.SelectNote(ctx, entry.ID); err != nil {
				log.Printf("open failed: %v", err)
				continue
			}
			_, buffer, _ := d.Selected()
			fmt.Println(buffer)

		case "type":
			_, buffer, state := d.Selected()
			if state == editor.StateEmpty {
				fmt.Println("no note open")
				continue
			}
			content := arg
			if buffer != "" {
				content = buffer + "\n" + arg
			}
			if err := d.Edit(content); err != nil {
				log.Printf("edit failed: %v", err)
			}

		case "show":
			_, buffer, state := d.Selected()
			if state == editor.StateEmpty {
				fmt.Println("no note open")
				continue
			}
			fmt.Println(buffer)
			fmt.Printf("[%s]\n", state)

		case "html":
			_, buffer, state := d.Selected()
			if state == editor.StateEmpty {
				fmt.Println("no note open")
				continue
			}
			html, err := api.Render(ctx, buffer)
			if err != nil {
				log.Printf("render failed: %v", err)
				continue
			}
			fmt.Print(html)

		case "save":
			d.ForceSave()

		case "del":
			entry, ok := entryAt(d, arg)
			if !ok {
				continue
			}
			if err := d.DeleteNote(ctx, entry.ID); err != nil {
				log.Printf("delete failed: %v", err)
			}

		case "quit", "exit":
			d.ForceSave()
			return

		default:
			fmt.Printf("unknown command %q, try 'help'\n", cmd)
		}
	}

	d.ForceSave()
}

func printList(d *editor.Dispatcher) {
	entries := d.Entries()
	if len(entries) == 0 {
		fmt.Println("no notes yet - 'new' creates one")
		return
	}
	for i, e := range entries {
		title := e.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("%2d. %s  (%s)\n", i+1, title, e.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
}

func entryAt(d *editor.Dispatcher, arg string) (editor.Entry, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	entries := d.Entries()
	if err != nil || n < 1 || n > len(entries) {
		fmt.Printf("expected a note number between 1 and %d\n", len(entries))
		return editor.Entry{}, false
	}
	return entries[n-1], true
}
