// Command cart keeps a vendor's cart on disk between sessions and submits it
// as an order to the marketplace API.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"bazaar-be/internal/cart"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const usage = `usage: cart [-file path] [-api url] <command> [flags]

commands:
  add -product ID -qty N      snapshot a product into the cart
  set -product ID -qty N      change a quantity, 0 removes the item
  remove -product ID          drop an item
  list                        show the cart and its total
  validate                    run the checkout rules locally
  clear                       empty the cart
  checkout -address A -phone P [-notes N] [-token T]
`

func main() {
	_ = godotenv.Load()
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func defaultCartFile() string {
	if p := os.Getenv("CART_FILE"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "cart.json"
	}
	return filepath.Join(home, ".bazaar", "cart.json")
}

func defaultAPI() string {
	if u := os.Getenv("BAZAAR_API"); u != "" {
		return u
	}
	return "http://localhost:5000"
}

func run(args []string, out io.Writer) error {
	global := flag.NewFlagSet("cart", flag.ContinueOnError)
	global.SetOutput(out)
	file := global.String("file", defaultCartFile(), "cart file")
	api := global.String("api", defaultAPI(), "marketplace API base URL")
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		fmt.Fprint(out, usage)
		return errors.New("missing command")
	}

	c, err := cart.Open(cart.NewFileStore(*file))
	if err != nil {
		return err
	}

	cmd, rest := global.Arg(0), global.Args()[1:]
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(out)
	productID := fs.String("product", "", "product id")
	qty := fs.Int("qty", 1, "quantity")
	address := fs.String("address", "", "delivery address")
	phone := fs.String("phone", "", "contact phone")
	notes := fs.String("notes", "", "notes for the supplier")
	token := fs.String("token", os.Getenv("BAZAAR_TOKEN"), "access token")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	cl := newClient(*api, *token)

	switch cmd {
	case "add":
		id, err := parseProduct(*productID)
		if err != nil {
			return err
		}
		p, err := cl.product(id)
		if err != nil {
			return err
		}
		if err := c.Add(cart.Item{
			ProductID:        p.ID,
			Name:             p.Name,
			Price:            p.Price,
			Unit:             string(p.Unit),
			SupplierID:       p.SupplierID,
			SupplierName:     p.SupplierName,
			Stock:            p.Stock,
			MinOrderQuantity: p.MinOrderQuantity,
			Quantity:         *qty,
		}); err != nil {
			return err
		}
		fmt.Fprintf(out, "added %d %s of %s\n", *qty, p.Unit, p.Name)
	case "set":
		id, err := parseProduct(*productID)
		if err != nil {
			return err
		}
		return c.UpdateQuantity(id, *qty)
	case "remove":
		id, err := parseProduct(*productID)
		if err != nil {
			return err
		}
		return c.Remove(id)
	case "list":
		printCart(out, c)
	case "validate":
		if res := c.Validate(); !res.Valid {
			return errors.New(res.Error)
		}
		fmt.Fprintln(out, "cart is valid")
	case "clear":
		return c.Clear()
	case "checkout":
		in, err := c.CheckoutRequest(*address, *phone, *notes)
		if err != nil {
			return err
		}
		number, err := cl.placeOrder(in)
		if err != nil {
			return err
		}
		if err := c.Clear(); err != nil {
			return err
		}
		fmt.Fprintf(out, "order %s placed\n", number)
	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("unknown command: %s", cmd)
	}
	return nil
}

func parseProduct(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid product id %q", raw)
	}
	return id, nil
}

func printCart(out io.Writer, c *cart.Cart) {
	items := c.Items()
	if len(items) == 0 {
		fmt.Fprintln(out, "cart is empty")
		return
	}
	for _, it := range items {
		fmt.Fprintf(out, "%s  %-20s %4d %-6s x %8s = %10s\n",
			it.ProductID, it.Name, it.Quantity, it.Unit, it.Price.StringFixed(2), it.Subtotal().StringFixed(2))
	}
	fmt.Fprintf(out, "%d units, total %s\n", c.Count(), c.Total().StringFixed(2))
}
