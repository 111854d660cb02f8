// Package main is a demo CLI exercising Memris end to end: a small
// "products" record type, saved and queried through RepositoryCore via
// the cobra subcommands below.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/Thejuampi/memris-sub005/pkg/arena"
	"github.com/Thejuampi/memris-sub005/pkg/descriptor"
	"github.com/Thejuampi/memris-sub005/pkg/factory"
	"github.com/Thejuampi/memris-sub005/pkg/logging"
	"github.com/Thejuampi/memris-sub005/pkg/materialize"
	"github.com/Thejuampi/memris-sub005/pkg/query"
	"github.com/Thejuampi/memris-sub005/pkg/repository"
	"github.com/Thejuampi/memris-sub005/pkg/typeset"
)

// Product is the demo record type every subcommand below operates on.
type Product struct {
	ID    int64  `memris:"column=id,id"`
	SKU   string `memris:"column=sku,index=hash"`
	Name  string `memris:"column=name"`
	Price float64 `memris:"column=price,index=range"`
}

var (
	fact *factory.Factory
	a    *arena.Arena
	repo *repository.Core
)

func main() {
	log := logging.Default()
	fact = factory.New(nil, log)
	defer fact.Close()

	var err error
	a, err = fact.CreateArena()
	if err != nil {
		fatal(err)
	}

	d, err := descriptor.Build(Product{}, typeset.DefaultRegistry(), nil)
	if err != nil {
		fatal(err)
	}
	if _, err := a.GetOrCreateTable(d); err != nil {
		fatal(err)
	}
	repo = repository.New(a, d, materialize.New(a), log, fact.Generators())

	root := &cobra.Command{
		Use:   "memris",
		Short: "Demo CLI over an in-memory Memris repository",
	}
	root.AddCommand(saveCmd(), getCmd(), findBySKUCmd(), priceRangeCmd(), listCmd(), deleteCmd(), countCmd())

	if err := root.Execute(); err != nil {
		fatal(err)
	}
}

func saveCmd() *cobra.Command {
	var sku, name string
	var price float64
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Insert a new product",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := &Product{SKU: sku, Name: name, Price: price}
			id, err := repo.Save(p)
			if err != nil {
				return err
			}
			fmt.Printf("saved product id=%v\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&sku, "sku", "", "product SKU")
	cmd.Flags().StringVar(&name, "name", "", "product name")
	cmd.Flags().Float64Var(&price, "price", 0, "product price")
	return cmd
}

func getCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Find a product by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id int64
			if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
				return err
			}
			rec, ok, err := repo.FindById(id)
			if err != nil {
				return err
			}
			if !ok {
				color.Red("no product with id %d", id)
				return nil
			}
			printProducts([]*Product{rec.(*Product)})
			return nil
		},
	}
	return cmd
}

func findBySKUCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find-sku <sku>",
		Short: "Find products by SKU (hash index lookup)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := &query.CompiledQuery{
				Kind: query.Find,
				Conditions: []query.Condition{
					{ColumnName: "sku", Operator: query.EQ, ParameterIndexes: []int{0}},
				},
			}
			return runFind(q, []any{args[0]})
		},
	}
	return cmd
}

func priceRangeCmd() *cobra.Command {
	var low, high float64
	cmd := &cobra.Command{
		Use:   "price-range",
		Short: "Find products whose price falls in [low, high] (range index lookup)",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := &query.CompiledQuery{
				Kind: query.Find,
				Conditions: []query.Condition{
					{ColumnName: "price", Operator: query.BetweenOp, ParameterIndexes: []int{0, 1}},
				},
				OrderBy: []query.OrderBy{{PropertyPath: "price", Ascending: true}},
			}
			return runFind(q, []any{low, high})
		},
	}
	cmd.Flags().Float64Var(&low, "low", 0, "lower price bound")
	cmd.Flags().Float64Var(&high, "high", 0, "upper price bound")
	return cmd
}

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every product",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(&query.CompiledQuery{Kind: query.Find}, nil)
		},
	}
	return cmd
}

func countCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count products",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(repo.Count())
			return nil
		},
	}
	return cmd
}

func deleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id int64
			if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
				return err
			}
			ok, err := repo.DeleteById(id)
			if err != nil {
				return err
			}
			if !ok {
				color.Red("no product with id %d", id)
				return nil
			}
			fmt.Printf("deleted product id=%d\n", id)
			return nil
		},
	}
	return cmd
}

func runFind(q *query.CompiledQuery, args []any) error {
	result, err := repo.FindBy(q, args)
	if err != nil {
		return err
	}
	recs, _ := result.([]any)
	products := make([]*Product, 0, len(recs))
	for _, r := range recs {
		products = append(products, r.(*Product))
	}
	printProducts(products)
	return nil
}

func printProducts(products []*Product) {
	if len(products) == 0 {
		color.Yellow("no products found")
		return
	}
	table := tablewriter.NewTable(os.Stdout)
	table.Header([]string{"ID", "SKU", "NAME", "PRICE"})
	for _, p := range products {
		table.Append([]string{
			fmt.Sprintf("%d", p.ID),
			p.SKU,
			p.Name,
			fmt.Sprintf("%.2f", p.Price),
		})
	}
	table.Render()
}

func fatal(err error) {
	color.Red("memris: %v", err)
	os.Exit(1)
}
