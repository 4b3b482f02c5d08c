package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"novo-proxy-go/internal/apiclient"
)

// root is the full command tree. serve is the default command.
type root struct {
	APIURL  string           `name:"api-url" help:"Base URL of the NOVO API or of this proxy." default:"http://localhost:8000/api/novo" env:"NOVO_API_URL"`
	Session string           `help:"File holding the access token." default:"${session_path}" env:"NOVO_SESSION"`
	Version kong.VersionFlag `help:"Print version and exit."`

	Serve      serveCmd      `cmd:"" default:"withargs" help:"Run the proxy server."`
	Register   registerCmd   `cmd:"" help:"Create an account and store its access token."`
	Me         meCmd         `cmd:"" help:"Show the current account."`
	Recipients recipientsCmd `cmd:"" help:"Manage message recipients."`
	Message    messageCmd    `cmd:"" help:"Read or replace the stored message."`
	Payment    paymentCmd    `cmd:"" help:"Start or inspect payments."`
	Logout     logoutCmd     `cmd:"" help:"Forget the stored access token."`
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".novo", "session.toml")
	}
	return filepath.Join(home, ".novo", "session.toml")
}

// app is bound into every client command's Run method.
type app struct {
	api *apiclient.Client
	out io.Writer
}

func newApp(apiURL, sessionPath string, out io.Writer) *app {
	return &app{
		api: apiclient.New(apiURL, apiclient.NewFileSession(sessionPath)),
		out: out,
	}
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type okResult struct {
	OK bool `json:"ok"`
}

type registerCmd struct {
	Name  string `required:"" help:"Account holder name."`
	Phone string `required:"" help:"Account holder phone number."`
}

func (c *registerCmd) Run(a *app) error {
	res, err := a.api.Register(context.Background(), apiclient.RegisterInput{Name: c.Name, Phone: c.Phone})
	if err != nil {
		return err
	}
	return a.print(struct {
		OK   bool           `json:"ok"`
		User apiclient.User `json:"user"`
	}{OK: res.OK, User: res.User})
}

type meCmd struct{}

func (c *meCmd) Run(a *app) error {
	me, err := a.api.Me(context.Background())
	if err != nil {
		return err
	}
	return a.print(me)
}

type recipientsCmd struct {
	List   recipientsListCmd   `cmd:"" default:"1" help:"List recipients."`
	Add    recipientsAddCmd    `cmd:"" help:"Add a recipient."`
	Delete recipientsDeleteCmd `cmd:"" help:"Delete a recipient."`
}

type recipientsListCmd struct{}

func (c *recipientsListCmd) Run(a *app) error {
	list, err := a.api.Recipients(context.Background())
	if err != nil {
		return err
	}
	if list == nil {
		list = []apiclient.Recipient{}
	}
	return a.print(list)
}

type recipientsAddCmd struct {
	Name     string `required:"" help:"Recipient name."`
	Phone    string `required:"" help:"Recipient phone number."`
	Relation string `help:"Relation to the account holder."`
}

func (c *recipientsAddCmd) Run(a *app) error {
	in := apiclient.RecipientInput{Name: c.Name, Phone: c.Phone, Relation: c.Relation}
	if err := a.api.AddRecipient(context.Background(), in); err != nil {
		return err
	}
	return a.print(okResult{OK: true})
}

type recipientsDeleteCmd struct {
	ID int64 `arg:"" help:"Recipient id."`
}

func (c *recipientsDeleteCmd) Run(a *app) error {
	if err := a.api.DeleteRecipient(context.Background(), c.ID); err != nil {
		return err
	}
	return a.print(okResult{OK: true})
}

type messageCmd struct {
	Get messageGetCmd `cmd:"" default:"1" help:"Show the stored message."`
	Set messageSetCmd `cmd:"" help:"Replace the stored message."`
}

type messageGetCmd struct{}

func (c *messageGetCmd) Run(a *app) error {
	msg, err := a.api.Message(context.Background())
	if err != nil {
		return err
	}
	return a.print(msg)
}

type messageSetCmd struct {
	Content string `arg:"" help:"Message text."`
}

func (c *messageSetCmd) Run(a *app) error {
	if err := a.api.SaveMessage(context.Background(), c.Content); err != nil {
		return err
	}
	return a.print(okResult{OK: true})
}

type paymentCmd struct {
	Start  paymentStartCmd  `cmd:"" help:"Start a payment."`
	Latest paymentLatestCmd `cmd:"" default:"1" help:"Show the latest payment."`
}

type paymentStartCmd struct {
	Method string `help:"Payment method." default:"kakaopay"`
}

func (c *paymentStartCmd) Run(a *app) error {
	if err := a.api.StartPayment(context.Background(), c.Method); err != nil {
		return err
	}
	return a.print(okResult{OK: true})
}

type paymentLatestCmd struct{}

func (c *paymentLatestCmd) Run(a *app) error {
	p, err := a.api.LatestPayment(context.Background())
	if err != nil {
		return err
	}
	return a.print(struct {
		Payment *apiclient.Payment `json:"payment"`
	}{Payment: p})
}

type logoutCmd struct{}

func (c *logoutCmd) Run(a *app) error {
	if err := a.api.Logout(); err != nil {
		return err
	}
	return a.print(okResult{OK: true})
}
