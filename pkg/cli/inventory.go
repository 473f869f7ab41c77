package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/tillware/posgate/pkg/client"
	"github.com/tillware/posgate/pkg/rbac"
)

func newInventoryCommand() *Command {
	cmd := &Command{
		Name:        "inventory",
		Description: "Manage the product catalog (list, add, update, delete)",
		Flags:       flag.NewFlagSet("inventory", flag.ExitOnError),
		Run:         runInventory,
	}

	cmd.Flags.Int("skip", 0, "Pagination offset for list")
	cmd.Flags.Int("limit", 50, "Pagination limit for list")
	cmd.Flags.Int64("id", 0, "Product id for update or delete")
	cmd.Flags.String("name", "", "Product name")
	cmd.Flags.String("sku", "", "Product SKU")
	cmd.Flags.String("category", "", "Product category")
	cmd.Flags.Float64("price", 0, "Unit price")
	cmd.Flags.Int("stock", 0, "Stock quantity")
	cmd.Flags.Int("min-stock", 0, "Minimum stock level")
	cmd.Flags.Bool("verbose", false, "Enable verbose output")

	return cmd
}

func runInventory(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: posgate inventory <list|add|update|delete> [flags]")
	}
	verb := args[0]

	cmd := newInventoryCommand()
	if err := cmd.Flags.Parse(args[1:]); err != nil {
		return err
	}
	verbose := cmd.Flags.Lookup("verbose").Value.String() == "true"

	ctx := context.Background()
	a, err := newApp(ctx, verbose)
	if err != nil {
		return err
	}
	if err := a.requireSession(); err != nil {
		return err
	}

	switch verb {
	case "list":
		return listProducts(ctx, a, cmd)
	case "add":
		return addProduct(ctx, a, cmd)
	case "update":
		return updateProduct(ctx, a, cmd)
	case "delete":
		return deleteProduct(ctx, a, cmd)
	default:
		return fmt.Errorf("unknown inventory subcommand: %s", verb)
	}
}

func listProducts(ctx context.Context, a *app, cmd *Command) error {
	if !a.resolver.Allowed(ctx, rbac.PermReadProduct) {
		return fmt.Errorf("permission denied: read_product")
	}
	skip, _ := strconv.Atoi(cmd.Flags.Lookup("skip").Value.String())
	limit, _ := strconv.Atoi(cmd.Flags.Lookup("limit").Value.String())

	products, err := a.backend.Products(ctx, skip, limit)
	if err != nil {
		return err
	}
	fmt.Printf("%-6s %-24s %-12s %-10s %-8s %s\n", "ID", "NAME", "SKU", "PRICE", "STOCK", "CATEGORY")
	for _, p := range products {
		low := ""
		if p.StockQuantity <= p.MinStock {
			low = " (low)"
		}
		fmt.Printf("%-6d %-24s %-12s %-10.2f %-8d %s%s\n",
			p.ID, p.Name, p.SKU, p.Price, p.StockQuantity, p.Category, low)
	}
	return nil
}

func productRequestFromFlags(cmd *Command) (client.ProductRequest, error) {
	price, err := strconv.ParseFloat(cmd.Flags.Lookup("price").Value.String(), 64)
	if err != nil {
		return client.ProductRequest{}, fmt.Errorf("invalid price: %w", err)
	}
	stock, _ := strconv.Atoi(cmd.Flags.Lookup("stock").Value.String())
	minStock, _ := strconv.Atoi(cmd.Flags.Lookup("min-stock").Value.String())

	req := client.ProductRequest{
		Name:          cmd.Flags.Lookup("name").Value.String(),
		SKU:           cmd.Flags.Lookup("sku").Value.String(),
		Category:      cmd.Flags.Lookup("category").Value.String(),
		Price:         price,
		StockQuantity: stock,
		MinStock:      minStock,
	}
	if req.Name == "" || req.SKU == "" {
		return client.ProductRequest{}, fmt.Errorf("name and sku are required")
	}
	if req.Price < 0 {
		return client.ProductRequest{}, fmt.Errorf("price must not be negative")
	}
	return req, nil
}

func addProduct(ctx context.Context, a *app, cmd *Command) error {
	if !a.resolver.Allowed(ctx, rbac.PermCreateProduct) {
		return fmt.Errorf("permission denied: create_product")
	}
	req, err := productRequestFromFlags(cmd)
	if err != nil {
		return err
	}
	product, err := a.backend.CreateProduct(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("Created product %s (id %d)\n", product.Name, product.ID)
	return nil
}

func updateProduct(ctx context.Context, a *app, cmd *Command) error {
	if !a.resolver.Allowed(ctx, rbac.PermUpdateProduct) {
		return fmt.Errorf("permission denied: update_product")
	}
	id, err := strconv.ParseInt(cmd.Flags.Lookup("id").Value.String(), 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("a positive product id is required")
	}
	req, err := productRequestFromFlags(cmd)
	if err != nil {
		return err
	}
	product, err := a.backend.UpdateProduct(ctx, id, req)
	if err != nil {
		return err
	}
	fmt.Printf("Updated product %s (id %d)\n", product.Name, product.ID)
	return nil
}

func deleteProduct(ctx context.Context, a *app, cmd *Command) error {
	if !a.resolver.Allowed(ctx, rbac.PermDeleteProduct) {
		return fmt.Errorf("permission denied: delete_product")
	}
	id, err := strconv.ParseInt(cmd.Flags.Lookup("id").Value.String(), 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("a positive product id is required")
	}
	if err := a.backend.DeleteProduct(ctx, id); err != nil {
		return err
	}
	fmt.Printf("Deleted product %d\n", id)
	return nil
}
