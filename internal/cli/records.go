package cli

import (
	"fmt"

	"github.com/jrsteele09/go-crm/apiclient"
	"github.com/spf13/cobra"
)

func (a *app) leadsCmd() *cobra.Command {
	var req apiclient.LeadRequest

	add := &cobra.Command{
		Use:   "add",
		Short: "Create a lead",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := a.session()
			if err != nil {
				return err
			}
			if err := a.client(store).CreateLead(cmd.Context(), req); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Lead %q created.\n", req.Name)
			return nil
		},
	}
	add.Flags().StringVar(&req.Name, "name", "", "Lead name")
	add.Flags().StringVar(&req.Email, "email", "", "Contact email")
	add.Flags().StringVar(&req.Company, "company", "", "Company")
	add.Flags().StringVar(&req.Status, "status", "", "new, contacted, qualified or lost")
	_ = add.MarkFlagRequired("name")

	cmd := &cobra.Command{
		Use:   "leads",
		Short: "Manage leads",
	}
	cmd.AddCommand(add)
	return cmd
}

func (a *app) employeesCmd() *cobra.Command {
	var req apiclient.EmployeeRequest

	add := &cobra.Command{
		Use:   "add",
		Short: "Create an employee",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := a.session()
			if err != nil {
				return err
			}
			if err := a.client(store).CreateEmployee(cmd.Context(), req); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Employee %q created.\n", req.Name)
			return nil
		},
	}
	add.Flags().StringVar(&req.Name, "name", "", "Employee name")
	add.Flags().StringVar(&req.Email, "email", "", "Work email")
	add.Flags().StringVar(&req.Role, "role", "", "Job title")
	_ = add.MarkFlagRequired("name")

	cmd := &cobra.Command{
		Use:   "employees",
		Short: "Manage employees",
	}
	cmd.AddCommand(add)
	return cmd
}
