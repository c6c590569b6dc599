package main

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/spf13/cobra"
)

func init() {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts",
	}

	createCmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create an account",
		Long:  "Create an account with the default role. Prompts for a password on stdin.",
		Args:  cobra.ExactArgs(1),
		RunE:  runUsersCreate,
	}

	promoteCmd := &cobra.Command{
		Use:   "promote <username>",
		Short: "Upgrade an account to the member role",
		Args:  cobra.ExactArgs(1),
		RunE:  runUsersPromote,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all accounts",
		Args:  cobra.NoArgs,
		RunE:  runUsersList,
	}

	usersCmd.AddCommand(createCmd, promoteCmd, listCmd)
	rootCmd.AddCommand(usersCmd)
}

func runUsersCreate(cmd *cobra.Command, args []string) error {
	username := args[0]

	var password string
	fmt.Print("Password: ")
	fmt.Scanln(&password)
	if password == "" {
		return fmt.Errorf("password must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	repo, closeFn, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	if err := repo.CreateUser(cmd.Context(), username, string(hash)); err != nil {
		return err
	}

	fmt.Printf("User %q created.\n", username)
	return nil
}

func runUsersPromote(cmd *cobra.Command, args []string) error {
	username := args[0]

	repo, closeFn, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	if err := repo.PromoteToMember(cmd.Context(), username); err != nil {
		return err
	}

	fmt.Printf("User %q is now a member.\n", username)
	return nil
}

func runUsersList(cmd *cobra.Command, args []string) error {
	repo, closeFn, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	users, err := repo.ListUsers(cmd.Context())
	if err != nil {
		return err
	}

	rows := make([][]interface{}, 0, len(users))
	for _, u := range users {
		rows = append(rows, []interface{}{u.Username, u.UserType, u.CreatedAt.Format("2006-01-02 15:04")})
	}
	renderTable([]string{"Username", "Role", "Created"}, rows)
	return nil
}
