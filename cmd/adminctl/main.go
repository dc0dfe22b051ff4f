// Command adminctl bootstraps an administrator account. It prompts for the
// account details on the terminal and writes the user directly to the
// database, bypassing the public registration flow so that the admin and
// superUser roles can be assigned.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/akarpovs/livegate/internal/server/auth"
	"github.com/akarpovs/livegate/internal/server/config"
	"github.com/akarpovs/livegate/internal/server/shared/db"
	"github.com/akarpovs/livegate/internal/server/users"
)

func readLine(r *bufio.Reader, prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func run(ctx context.Context, cfg *config.Config) error {

	r := bufio.NewReader(os.Stdin)

	email, err := readLine(r, "Email: ")
	if err != nil {
		return err
	}

	fullName, err := readLine(r, "Full name: ")
	if err != nil {
		return err
	}

	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}

	if email == "" || password == "" {
		return fmt.Errorf("email and password are required")
	}

	hash, err := auth.HashPassword(password, cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("password hash error: %w", err)
	}

	m, err := db.NewPostgresRepositoryManager(cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer m.Close()

	if err := m.RunMigrations(ctx); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	u := &users.User{
		ID:           uuid.NewString(),
		Email:        users.NormalizeEmail(email),
		PasswordHash: hash,
		FullName:     fullName,
		IsActive:     true,
		Roles:        []users.Role{users.RoleAdmin, users.RoleSuperUser},
	}

	created, err := m.Users().Create(ctx, u)
	if err != nil {
		return fmt.Errorf("user creation error: %w", err)
	}

	fmt.Printf("created admin %s (%s)\n", created.Email, created.ID)
	return nil
}

func main() {
	cfg := config.LoadConfig()
	if err := run(context.Background(), cfg); err != nil {
		log.Fatal(err)
	}
}
