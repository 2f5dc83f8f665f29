package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/branchlib/circulate/config"
	"github.com/branchlib/circulate/log"
	"github.com/branchlib/circulate/model"
	"github.com/branchlib/circulate/service"
	"github.com/branchlib/circulate/store"
	"github.com/branchlib/circulate/store/db"
)

var (
	configFile string

	bookSvc *service.BookService
	userSvc *service.UserService
	loanSvc *service.LoanService

	rootCmd = &cobra.Command{
		Use:   "circulate",
		Short: "Circulate is a small library circulation engine",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.GetConfig(); err != nil {
				return err
			}
			if configFile != "" {
				if _, err := config.ParseFile(configFile); err != nil {
					return err
				}
			}
			log.Logger = log.NewLogger()

			backend, err := newBackend()
			if err != nil {
				return err
			}

			if config.Opts.SeedData {
				if err := store.Seed(backend, backend); err != nil {
					return err
				}
			}

			calc := service.NewFineCalculator(config.Opts.FineRatePerDay, config.Opts.MaxFine)
			bookSvc = service.NewBookService(backend)
			userSvc = service.NewUserService(backend)
			loanSvc = service.NewLoanService(backend, backend, backend, calc)
			return nil
		},
	}
)

// newBackend builds the repository stack the options ask for. The
// sqlite backend is wrapped in a fallback over an in-memory secondary
// so a broken database file degrades to a usable session instead of a
// crash.
func newBackend() (store.Backend, error) {
	switch config.Opts.Backend {
	case "memory":
		return store.NewMemoryStore(), nil
	case "file":
		loanFile := config.Opts.Data + "/loans.json"
		return store.NewFileStore(config.Opts.BookFile, config.Opts.UserFile, loanFile)
	case "sqlite":
		d, err := db.NewDB(config.Opts.DSN)
		if err != nil {
			return nil, err
		}
		if err := d.Migrate(context.Background()); err != nil {
			return nil, err
		}
		primary := store.NewSQLiteStore(d.DB)
		if err := primary.Ping(); err != nil {
			log.Warn("database ping failed, relying on the in-memory fallback", zap.Error(err))
		}
		return store.NewFallbackStore(primary, store.NewMemoryStore()), nil
	default:
		return nil, fmt.Errorf("unknown backend: %s", config.Opts.Backend)
	}
}

var addBookCmd = &cobra.Command{
	Use:   "add-book <type> <isbn> <title> <author> <year> <copies>",
	Short: "Catalog a printed book or ebook",
	Args:  cobra.MinimumNArgs(6),
	RunE: func(cmd *cobra.Command, args []string) error {
		year, err := strconv.Atoi(args[4])
		if err != nil {
			return err
		}
		copies, err := strconv.Atoi(args[5])
		if err != nil {
			return err
		}

		var book *model.Book
		switch args[0] {
		case "printed":
			shelf, _ := cmd.Flags().GetString("shelf")
			condition, _ := cmd.Flags().GetString("condition")
			edition, _ := cmd.Flags().GetInt("edition")
			book, err = bookSvc.AddPrintedBook(args[1], args[2], args[3], year, copies, shelf, model.Condition(condition), edition)
		case "ebook":
			size, _ := cmd.Flags().GetFloat64("size-mb")
			format, _ := cmd.Flags().GetString("format")
			link, _ := cmd.Flags().GetString("link")
			drm, _ := cmd.Flags().GetBool("drm")
			book, err = bookSvc.AddEBook(args[1], args[2], args[3], year, copies, size, model.Format(format), link, drm)
		default:
			return fmt.Errorf("unknown book type: %s", args[0])
		}
		if err != nil {
			return err
		}
		fmt.Println("Cataloged:", book.Details())
		return nil
	},
}

var listBooksCmd = &cobra.Command{
	Use:   "list-books",
	Short: "List the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		books, err := bookSvc.List()
		if err != nil {
			return err
		}
		for _, b := range books {
			status := "available"
			if !b.Available() {
				status = "unavailable"
			}
			fmt.Printf("%s | copies: %d | %s\n", b.Details(), b.Copies, status)
		}
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the catalog by title or author",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		byTitle, err := bookSvc.SearchByTitle(args[0])
		if err != nil {
			return err
		}
		byAuthor, err := bookSvc.SearchByAuthor(args[0])
		if err != nil {
			return err
		}
		seen := map[string]bool{}
		for _, b := range append(byTitle, byAuthor...) {
			if seen[b.ISBN] {
				continue
			}
			seen[b.ISBN] = true
			fmt.Println(b.Details())
		}
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <role> <username> <password> <name> <email>",
	Short: "Register a new user",
	Args:  cobra.MinimumNArgs(5),
	RunE: func(cmd *cobra.Command, args []string) error {
		mobile, _ := cmd.Flags().GetString("mobile")
		user, err := userSvc.Register(&model.UserRegisterRequest{
			Role:     model.Role(args[0]),
			Username: args[1],
			Password: args[2],
			Name:     args[3],
			Email:    args[4],
			Mobile:   mobile,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Registered %s (%s)\n", user.Username, user.ID)
		return nil
	},
}

var borrowCmd = &cobra.Command{
	Use:   "borrow <member-id> <isbn>",
	Short: "Borrow a book for a member",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		if days == 0 {
			days = config.Opts.LoanPeriodDays
		}
		loan, err := loanSvc.Borrow(args[0], args[1], days)
		if err != nil {
			return err
		}
		fmt.Println(loan)
		return nil
	},
}

var returnCmd = &cobra.Command{
	Use:   "return <loan-id>",
	Short: "Return a borrowed book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fine, err := loanSvc.Return(args[0])
		if err != nil {
			return err
		}
		if fine > 0 {
			fmt.Printf("Returned. Fine charged: %.2f\n", fine)
		} else {
			fmt.Println("Returned. No fine.")
		}
		return nil
	},
}

var renewCmd = &cobra.Command{
	Use:   "renew <loan-id> <extra-days>",
	Short: "Extend a loan's due date",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		days, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}
		if err := loanSvc.Renew(args[0], days); err != nil {
			return err
		}
		fmt.Println("Renewed.")
		return nil
	},
}

var reserveCmd = &cobra.Command{
	Use:   "reserve <isbn>",
	Short: "Place a hold on a printed book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bookSvc.Reserve(args[0]); err != nil {
			return err
		}
		fmt.Println("Reserved.")
		return nil
	},
}

var cancelReservationCmd = &cobra.Command{
	Use:   "cancel-reservation <isbn>",
	Short: "Release a hold on a printed book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bookSvc.CancelReservation(args[0]); err != nil {
			return err
		}
		fmt.Println("Reservation cancelled.")
		return nil
	},
}

var pickupCmd = &cobra.Command{
	Use:   "pickup <member-id> <isbn>",
	Short: "Check out a reserved book for the reserver",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		if days == 0 {
			days = config.Opts.LoanPeriodDays
		}
		loan, err := loanSvc.PickupReservation(args[0], args[1], days)
		if err != nil {
			return err
		}
		fmt.Println(loan)
		return nil
	},
}

var payFineCmd = &cobra.Command{
	Use:   "pay-fine <member-id> <amount>",
	Short: "Pay down a member's fine balance",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return err
		}
		return loanSvc.ProcessFinePayment(args[0], amount)
	},
}

var loansCmd = &cobra.Command{
	Use:   "loans <member-id>",
	Short: "List a member's open loans",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loans, err := loanSvc.ActiveLoans(args[0])
		if err != nil {
			return err
		}
		for _, l := range loans {
			fmt.Println(l)
		}
		return nil
	},
}

var overdueCmd = &cobra.Command{
	Use:   "overdue",
	Short: "List every overdue loan",
	RunE: func(cmd *cobra.Command, args []string) error {
		loans, err := loanSvc.OverdueLoans()
		if err != nil {
			return err
		}
		for _, l := range loans {
			fmt.Println(l)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file")

	addBookCmd.Flags().String("shelf", "A-1", "shelf location (printed)")
	addBookCmd.Flags().String("condition", "Good", "condition (printed)")
	addBookCmd.Flags().Int("edition", 1, "edition (printed)")
	addBookCmd.Flags().Float64("size-mb", 1.0, "file size in MB (ebook)")
	addBookCmd.Flags().String("format", "EPUB", "file format (ebook)")
	addBookCmd.Flags().String("link", "", "download link (ebook)")
	addBookCmd.Flags().Bool("drm", false, "DRM protected (ebook)")
	registerCmd.Flags().String("mobile", "", "phone number")
	borrowCmd.Flags().Int("days", 0, "loan period in days")
	pickupCmd.Flags().Int("days", 0, "loan period in days")

	rootCmd.AddCommand(addBookCmd, listBooksCmd, searchCmd, registerCmd,
		borrowCmd, returnCmd, renewCmd, reserveCmd, cancelReservationCmd,
		pickupCmd, payFineCmd, loansCmd, overdueCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if log.Logger != nil {
			log.Error("command failed", zap.Error(err))
			log.Logger.Sync()
		}
		os.Exit(1)
	}
	if log.Logger != nil {
		log.Logger.Sync()
	}
}
