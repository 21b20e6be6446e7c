// Command ordercli submits an order to the order API from the terminal.
//
//	ordercli -endpoint https://api.example.com -name "Jane Doe" -email jane@x.com -item P1:2:9.99
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/example/order-pipeline/internal/client"
	"github.com/example/order-pipeline/internal/domain/order"
	"github.com/example/order-pipeline/internal/logging"
)

// itemFlags collects repeated -item productId:quantity:price[:name] values.
type itemFlags []order.Item

func (f *itemFlags) String() string { return fmt.Sprint(len(*f), " items") }

func (f *itemFlags) Set(v string) error {
	item, err := parseItem(v)
	if err != nil {
		return err
	}
	*f = append(*f, item)
	return nil
}

func parseItem(v string) (order.Item, error) {
	parts := strings.SplitN(v, ":", 4)
	if len(parts) < 3 {
		return order.Item{}, fmt.Errorf("item %q: want productId:quantity:price[:name]", v)
	}
	qty, err := strconv.Atoi(parts[1])
	if err != nil {
		return order.Item{}, fmt.Errorf("item %q: quantity: %w", v, err)
	}
	price, err := order.ParseMoney(parts[2])
	if err != nil {
		return order.Item{}, fmt.Errorf("item %q: price: %w", v, err)
	}
	item := order.Item{ProductID: parts[0], Quantity: qty, Price: price}
	if len(parts) == 4 {
		item.ProductName = parts[3]
	}
	return item, nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("ordercli", flag.ContinueOnError)
	var (
		endpoint = fs.String("endpoint", envOr("ORDER_API_ENDPOINT", "http://localhost:8080"), "order API base URL")
		name     = fs.String("name", "", "customer name")
		mail     = fs.String("email", "", "customer email")
		customer = fs.String("customer-id", "", "optional customer ID")
		file     = fs.String("file", "", "read the submission from a JSON file instead of flags")
		verbose  = fs.Bool("v", false, "log retries to stderr")
		items    itemFlags
	)
	fs.Var(&items, "item", "line item as productId:quantity:price[:name], repeatable")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	sub := order.Submission{CustomerID: *customer, CustomerName: *name, CustomerEmail: *mail, Items: items}
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if err := json.Unmarshal(data, &sub); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", *file, err)
			return 1
		}
	}

	// Catch obvious mistakes locally; the server validates again.
	if verrs := order.Validate(sub); len(verrs) > 0 {
		fmt.Fprintln(os.Stderr, "Validation failed")
		for _, fe := range verrs {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", fe.Field, fe.Message)
		}
		return 1
	}

	level := "warn"
	if *verbose {
		level = "info"
	}
	logger := logging.Must(logging.Config{Service: "ordercli", Level: level, Format: "console"})
	defer logging.Sync(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res := client.New(*endpoint, client.WithLogger(logger)).Submit(ctx, sub)
	if !res.Success {
		fmt.Fprintln(os.Stderr, res.Message)
		for _, v := range res.ValidationErrors {
			fmt.Fprintf(os.Stderr, "  %s\n", v)
		}
		return 1
	}

	fmt.Printf("%s\norder id:   %s\ncreated at: %s\n", res.Message, res.OrderID, res.CreatedAt)
	return 0
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
