package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/san-kum/aquarium/internal/export"
	"github.com/san-kum/aquarium/internal/sim"
	"github.com/san-kum/aquarium/internal/todo"
	"github.com/spf13/cobra"
)

// editItems loads the stored list, applies cmd and saves the result.
func editItems(cmd sim.Command) ([]todo.Item, error) {
	st, err := openStore()
	if err != nil {
		return nil, err
	}
	items, err := st.LoadItems()
	if err != nil {
		return nil, err
	}
	next, err := cmd(items)
	if err != nil {
		return nil, err
	}
	if err := st.SaveItems(next); err != nil {
		return nil, err
	}
	return next, nil
}

func addItem(cmd *cobra.Command, args []string) error {
	p, err := todo.ParsePriority(priority)
	if err != nil {
		return err
	}
	var added todo.Item
	_, err = editItems(func(list []todo.Item) ([]todo.Item, error) {
		next, it, err := todo.Add(list, args[0], p, time.Now())
		added = it
		return next, err
	})
	if err != nil {
		return err
	}
	fmt.Printf("added %s: %s\n", added.ID, added.Content)
	return nil
}

func toggleItem(cmd *cobra.Command, args []string) error {
	next, err := editItems(func(list []todo.Item) ([]todo.Item, error) {
		return todo.Toggle(list, args[0], time.Now())
	})
	if err != nil {
		return err
	}
	it, _ := todo.Find(next, args[0])
	state := "open"
	if it.Completed {
		state = "done"
	}
	fmt.Printf("%s is %s\n", it.ID, state)
	return nil
}

func deleteItem(cmd *cobra.Command, args []string) error {
	if _, err := editItems(func(list []todo.Item) ([]todo.Item, error) {
		return todo.Delete(list, args[0])
	}); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", args[0])
	return nil
}

func clearItems(cmd *cobra.Command, args []string) error {
	if _, err := editItems(func(list []todo.Item) ([]todo.Item, error) {
		return todo.Clear(list), nil
	}); err != nil {
		return err
	}
	fmt.Println("cleared")
	return nil
}

func listItems(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	items, err := st.LoadItems()
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("no items")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRIORITY\tDONE\tCREATED\tPOSITION\tCONTENT")
	for _, it := range items {
		done := ""
		if it.Completed {
			done = "x"
		}
		pos := "-"
		if it.Position != nil {
			pos = fmt.Sprintf("%.0f,%.0f", it.Position.X, it.Position.Y)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", it.ID, it.Priority, done, it.CreateDate, pos, it.Content)
	}
	return w.Flush()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	items, err := st.LoadItems()
	if err != nil {
		return err
	}
	svg := export.LayoutToSVG(items, sim.Size{Width: width, Height: height})
	if len(args) == 0 {
		fmt.Print(svg)
		return nil
	}
	if err := os.WriteFile(args[0], []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}
