package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/and161185/stockroom/internal/api"
	"github.com/and161185/stockroom/internal/client"
)

var errUsage = errors.New("usage")

// dispatch runs one CLI command against c and writes the result to out.
func dispatch(ctx context.Context, c *client.Client, cmd string, args []string, out io.Writer) error {
	switch cmd {
	case "register":
		req, err := parseRegister("register", args)
		if err != nil {
			return err
		}
		r, err := c.Register(ctx, req)
		if err != nil {
			return err
		}
		printJSON(out, r.User)

	case "login":
		req, err := parseLogin(args)
		if err != nil {
			return err
		}
		r, err := c.Login(ctx, req)
		if err != nil {
			return err
		}
		if err := saveToken(r.AccessToken, r.ExpiresAt); err != nil {
			return err
		}
		fmt.Fprintln(out, "ok")

	case "whoami":
		r, err := c.WhoAmI(ctx)
		if err != nil {
			return err
		}
		printJSON(out, r.User)

	case "users":
		return usersCmd(ctx, c, args, out)
	case "products":
		return productsCmd(ctx, c, args, out)
	case "categories":
		cs, err := c.Categories(ctx)
		if err != nil {
			return err
		}
		printJSON(out, cs)
	default:
		return errUsage
	}
	return nil
}

func parseRegister(name string, args []string) (*api.RegisterRequest, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	u := fs.String("u", "", "username")
	p := fs.String("p", "", "password")
	e := fs.String("e", "", "email")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *u == "" || *p == "" {
		return nil, errors.New("need -u and -p")
	}
	return &api.RegisterRequest{Username: *u, Password: *p, Email: *e}, nil
}

func parseLogin(args []string) (*api.LoginRequest, error) {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	u := fs.String("u", "", "username")
	p := fs.String("p", "", "password")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *u == "" || *p == "" {
		return nil, errors.New("need -u and -p")
	}
	return &api.LoginRequest{Username: *u, Password: *p}, nil
}

// setFlags reports which flags were given explicitly.
func setFlags(fs *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func optString(set map[string]bool, name, v string) *string {
	if !set[name] {
		return nil
	}
	return &v
}

func parseUserUpdate(args []string) (*api.UpdateUserRequest, error) {
	fs := flag.NewFlagSet("users update", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	id := fs.String("id", "", "user id")
	u := fs.String("u", "", "new username")
	e := fs.String("e", "", "new email (empty clears)")
	p := fs.String("p", "", "new password")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *id == "" {
		return nil, errors.New("need -id")
	}
	set := setFlags(fs)
	return &api.UpdateUserRequest{
		ID:       *id,
		Username: optString(set, "u", *u),
		Email:    optString(set, "e", *e),
		Password: *p,
	}, nil
}

func usersCmd(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	if len(args) < 1 {
		return errUsage
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "list":
		r, err := c.ListUsers(ctx)
		if err != nil {
			return err
		}
		printJSON(out, r.Users)

	case "get":
		fs := flag.NewFlagSet("users get", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		id := fs.String("id", "", "user id")
		u := fs.String("u", "", "username")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		var (
			r   *api.UserResponse
			err error
		)
		switch {
		case *id != "":
			r, err = c.GetUser(ctx, *id)
		case *u != "":
			r, err = c.GetUserByUsername(ctx, *u)
		default:
			return errors.New("need -id or -u")
		}
		if err != nil {
			return err
		}
		printJSON(out, r.User)

	case "create":
		req, err := parseRegister("users create", rest)
		if err != nil {
			return err
		}
		r, err := c.CreateUser(ctx, req)
		if err != nil {
			return err
		}
		printJSON(out, r.User)

	case "update":
		req, err := parseUserUpdate(rest)
		if err != nil {
			return err
		}
		r, err := c.UpdateUser(ctx, req)
		if err != nil {
			return err
		}
		printJSON(out, r.User)

	case "rm":
		id, err := parseID("users rm", rest)
		if err != nil {
			return err
		}
		if err := c.DeleteUser(ctx, id); err != nil {
			return err
		}
		fmt.Fprintln(out, "ok")

	case "exists":
		fs := flag.NewFlagSet("users exists", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		u := fs.String("u", "", "username")
		e := fs.String("e", "", "email")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		var (
			ok  bool
			err error
		)
		switch {
		case *u != "":
			ok, err = c.UsernameExists(ctx, *u)
		case *e != "":
			ok, err = c.EmailExists(ctx, *e)
		default:
			return errors.New("need -u or -e")
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(out, ok)

	default:
		return errUsage
	}
	return nil
}

func parseID(name string, args []string) (string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	id := fs.String("id", "", "record id")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if *id == "" {
		return "", errors.New("need -id")
	}
	return *id, nil
}

func parseProductCreate(args []string) (*api.CreateProductRequest, error) {
	fs := flag.NewFlagSet("products create", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	name := fs.String("name", "", "product name")
	price := fs.String("price", "", "price, e.g. 9.99")
	desc := fs.String("desc", "", "description")
	cat := fs.String("category", "", "category")
	stock := fs.Int("stock", 0, "stock quantity")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *name == "" || *price == "" {
		return nil, errors.New("need -name and -price")
	}
	set := setFlags(fs)
	return &api.CreateProductRequest{
		Name:          *name,
		Price:         *price,
		Description:   optString(set, "desc", *desc),
		Category:      optString(set, "category", *cat),
		StockQuantity: int32(*stock),
	}, nil
}

func parseProductUpdate(args []string) (*api.UpdateProductRequest, error) {
	fs := flag.NewFlagSet("products update", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	id := fs.String("id", "", "product id")
	name := fs.String("name", "", "product name")
	price := fs.String("price", "", "price")
	desc := fs.String("desc", "", "description (empty clears)")
	cat := fs.String("category", "", "category (empty clears)")
	stock := fs.Int("stock", 0, "stock quantity")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *id == "" {
		return nil, errors.New("need -id")
	}
	set := setFlags(fs)
	req := &api.UpdateProductRequest{
		ID:          *id,
		Name:        optString(set, "name", *name),
		Price:       optString(set, "price", *price),
		Description: optString(set, "desc", *desc),
		Category:    optString(set, "category", *cat),
	}
	if set["stock"] {
		n := int32(*stock)
		req.StockQuantity = &n
	}
	return req, nil
}

func parseProductList(args []string) (*api.ListProductsRequest, error) {
	fs := flag.NewFlagSet("products list", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	req := &api.ListProductsRequest{}
	fs.StringVar(&req.NameContains, "name", "", "name fragment")
	fs.StringVar(&req.Category, "category", "", "category")
	fs.StringVar(&req.MinPrice, "min", "", "min price")
	fs.StringVar(&req.MaxPrice, "max", "", "max price")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return req, nil
}

func productsCmd(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	if len(args) < 1 {
		return errUsage
	}
	sub, rest := args[0], args[1:]

	var (
		list *api.ListProductsResponse
		err  error
	)
	switch sub {
	case "list":
		req, perr := parseProductList(rest)
		if perr != nil {
			return perr
		}
		list, err = c.ListProducts(ctx, req)

	case "search", "category":
		fs := flag.NewFlagSet("products "+sub, flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		q := fs.String("q", "", "name fragment")
		cat := fs.String("c", "", "category")
		if perr := fs.Parse(rest); perr != nil {
			return perr
		}
		if sub == "search" {
			list, err = c.SearchProducts(ctx, *q)
		} else {
			list, err = c.ProductsByCategory(ctx, *cat)
		}

	case "price":
		fs := flag.NewFlagSet("products price", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		lo := fs.String("min", "", "min price")
		hi := fs.String("max", "", "max price")
		if perr := fs.Parse(rest); perr != nil {
			return perr
		}
		if *lo == "" || *hi == "" {
			return errors.New("need -min and -max")
		}
		list, err = c.ProductsByPrice(ctx, *lo, *hi)

	case "get":
		id, perr := parseID("products get", rest)
		if perr != nil {
			return perr
		}
		r, err := c.GetProduct(ctx, id)
		if err != nil {
			return err
		}
		printJSON(out, r.Product)
		return nil

	case "create":
		req, perr := parseProductCreate(rest)
		if perr != nil {
			return perr
		}
		r, err := c.CreateProduct(ctx, req)
		if err != nil {
			return err
		}
		printJSON(out, r.Product)
		return nil

	case "update":
		req, perr := parseProductUpdate(rest)
		if perr != nil {
			return perr
		}
		r, err := c.UpdateProduct(ctx, req)
		if err != nil {
			return err
		}
		printJSON(out, r.Product)
		return nil

	case "rm":
		id, perr := parseID("products rm", rest)
		if perr != nil {
			return perr
		}
		if err := c.DeleteProduct(ctx, id); err != nil {
			return err
		}
		fmt.Fprintln(out, "ok")
		return nil

	default:
		return errUsage
	}

	if err != nil {
		return err
	}
	printJSON(out, list.Products)
	return nil
}
