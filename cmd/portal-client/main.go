package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/employee-portal/portal/backend/go-services/client"
	"github.com/employee-portal/portal/backend/go-services/internal/employees"
)

// portal-client is a small CLI against a running portal service, handy for
// smoke-testing a deployment end to end: it registers or logs in, walks the
// directory CRUD and logs out.
func main() {
	base := flag.String("base", "http://localhost:5000", "base URL of the portal service")
	username := flag.String("username", "", "username to log in with (required)")
	password := flag.String("password", "", "password to log in with (required)")
	register := flag.Bool("register", false, "register the credential instead of logging in")
	list := flag.Bool("list", false, "list the directory and exit (skips the CRUD walk)")
	flag.Parse()

	if *username == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	api, err := client.NewAPI(*base, nil)
	if err != nil {
		log.Fatalf("client: %v", err)
	}
	defer api.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *register {
		if err := api.Register(ctx, *username, *password); err != nil {
			log.Fatalf("register: %v", err)
		}
		fmt.Println("registered and logged in")
	} else {
		if err := api.Login(ctx, *username, *password); err != nil {
			log.Fatalf("login: %v", err)
		}
		fmt.Println("logged in")
	}

	if *list {
		printDirectory(ctx, api)
		return
	}

	active := true
	in := &employees.Input{
		FirstName: "Smoke",
		LastName:  "Test",
		Email:     fmt.Sprintf("smoke.test.%d@example.com", time.Now().Unix()),
		Age:       30,
		DOB:       "1995-01-15",
		Active:    &active,
		Skill:     employees.SkillInput{Name: "Testing", Description: "Deployment smoke checks"},
	}

	id, err := api.AddEmployee(ctx, in)
	if err != nil {
		log.Fatalf("add employee: %v", err)
	}
	fmt.Printf("added employee %s\n", id)

	in.Age = 31
	if _, err := api.UpdateEmployee(ctx, id, in); err != nil {
		log.Fatalf("update employee: %v", err)
	}
	fmt.Println("updated employee")

	printDirectory(ctx, api)

	if err := api.DeleteEmployee(ctx, id); err != nil {
		log.Fatalf("delete employee: %v", err)
	}
	fmt.Println("deleted employee")

	if err := api.Logout(ctx); err != nil {
		log.Fatalf("logout: %v", err)
	}
	fmt.Println("logged out")
}

func printDirectory(ctx context.Context, api *client.API) {
	listed, err := api.Employees(ctx)
	if err != nil {
		log.Fatalf("list employees: %v", err)
	}
	fmt.Printf("directory has %d entries\n", len(listed))
	for _, e := range listed {
		skill := ""
		if e.Skill != nil {
			skill = e.Skill.Name
		}
		fmt.Printf("  %s %s <%s> age=%d skill=%s\n", e.FirstName, e.LastName, e.Email, e.Age, skill)
	}
}
