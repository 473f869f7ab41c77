package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/tillware/posgate/pkg/pos"
	"github.com/tillware/posgate/pkg/rbac"
)

func newSaleCommand() *Command {
	cmd := &Command{
		Name:        "sale",
		Description: "Submit a sale, items given as productID:quantity:unitPrice",
		Flags:       flag.NewFlagSet("sale", flag.ExitOnError),
		Run:         runSale,
	}

	cmd.Flags.Int64("branch", 1, "Branch id")
	cmd.Flags.String("payment", "cash", "Payment method")
	cmd.Flags.Float64("discount", 0, "Flat discount amount")
	cmd.Flags.Bool("verbose", false, "Enable verbose output")

	return cmd
}

func runSale(args []string) error {
	cmd := newSaleCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	branchID, _ := strconv.ParseInt(cmd.Flags.Lookup("branch").Value.String(), 10, 64)
	payment := cmd.Flags.Lookup("payment").Value.String()
	discount, _ := strconv.ParseFloat(cmd.Flags.Lookup("discount").Value.String(), 64)
	verbose := cmd.Flags.Lookup("verbose").Value.String() == "true"

	specs := cmd.Flags.Args()
	if len(specs) == 0 {
		return fmt.Errorf("at least one item is required, as productID:quantity:unitPrice")
	}

	cart := pos.NewCart()
	for _, spec := range specs {
		parts := strings.Split(spec, ":")
		if len(parts) != 3 {
			return fmt.Errorf("invalid item %q, expected productID:quantity:unitPrice", spec)
		}
		productID, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid product id in %q: %w", spec, err)
		}
		quantity, err := strconv.Atoi(parts[1])
		if err != nil {
			return fmt.Errorf("invalid quantity in %q: %w", spec, err)
		}
		unitPrice, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return fmt.Errorf("invalid unit price in %q: %w", spec, err)
		}
		if err := cart.AddItem(productID, "", unitPrice, quantity); err != nil {
			return err
		}
	}
	if discount > 0 {
		if err := cart.SetDiscount(discount); err != nil {
			return err
		}
	}

	ctx := context.Background()
	a, err := newApp(ctx, verbose)
	if err != nil {
		return err
	}
	if err := a.requireSession(); err != nil {
		return err
	}

	if !a.resolver.Allowed(ctx, rbac.PermCreateSale) {
		return fmt.Errorf("permission denied: create_sale")
	}

	req, err := cart.SaleRequest(branchID, a.store.UserID(), payment)
	if err != nil {
		return err
	}

	sale, err := a.backend.CreateSale(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("Sale %d recorded\n", sale.ID)
	fmt.Printf("  Subtotal: %.2f\n", cart.Subtotal())
	fmt.Printf("  Discount: %.2f\n", cart.Discount())
	fmt.Printf("  Tax:      %.2f\n", cart.Tax())
	fmt.Printf("  Total:    %.2f\n", cart.Total())
	return nil
}
