package cli

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"empadmin/internal/api"
	"empadmin/internal/employee"
	"empadmin/internal/flags"
	"empadmin/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// maxUploadBytes caps the size of an --image file.
const maxUploadBytes = 5 << 20

// lookupPageSize is the page size used when paging through the list to find
// the employee being edited.
const lookupPageSize = 100

// maxLookupPages bounds the lookup against a server that ignores the page
// parameter.
const maxLookupPages = 500

type formFlags struct {
	employeeID  string
	name        string
	department  string
	role        string
	status      string
	joiningDate string
	score       int
	image       string
	imageURL    string
	isArchived  bool
}

var (
	createOpts formFlags
	updateOpts formFlags
)

var employeesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an employee",
	Long: `Create an employee from the form flags.

--employee-id, --name, --department and --role are required. --status
defaults to "Active" and --score to 70 (clamped to 1-100). --image uploads a
local picture; --image-url stores a link instead.

Examples:
  empadmin employees create --employee-id E-100 --name "Ada Lovelace" \
    --department Engineering --role Engineer --joining-date 2024-03-01 \
    --score 88 --image ./ada.png
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, cfg)
		if err != nil {
			return err
		}
		run := func() error {
			d, err := fillDraft(cmd.Flags(), a.store, &createOpts)
			if err != nil {
				return err
			}
			if !a.store.CreateEmployee(cmd.Context(), d) {
				return reported
			}
			return nil
		}
		return a.finish(run())
	},
}

var employeesUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Update an employee",
	Long: `Update the employee with the given ID.

The form starts from the employee's current record (found by paging
through the active and archived lists); only the flags you set change it.
The request is sent as multipart only when --image uploads a new picture.

Examples:
  empadmin employees update 65f0c2... --role "Staff Engineer" --score 92
  empadmin employees update 65f0c2... --status "On Leave"
  empadmin employees update 65f0c2... --image ./new.png
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := strings.TrimSpace(args[0])
		if id == "" {
			return usageErrorf("employee ID must not be empty")
		}
		a, err := newApp(cmd, cfg)
		if err != nil {
			return err
		}
		run := func() error {
			e, err := findEmployee(cmd.Context(), a.client, id)
			if err != nil {
				return failure(err)
			}
			a.store.EditDraft(e)
			d, err := fillDraft(cmd.Flags(), a.store, &updateOpts)
			if err != nil {
				return err
			}
			if !a.store.UpdateEmployee(cmd.Context(), id, d) {
				return reported
			}
			return nil
		}
		return a.finish(run())
	},
}

var employeesArchiveCmd = &cobra.Command{
	Use:   "archive ID",
	Short: "Archive or restore an employee",
	Long: `Toggle the archived flag of the employee with the given ID. Archiving
an archived employee restores it. Employees are never deleted.

Examples:
  empadmin employees archive 65f0c2...
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := strings.TrimSpace(args[0])
		if id == "" {
			return usageErrorf("employee ID must not be empty")
		}
		a, err := newApp(cmd, cfg)
		if err != nil {
			return err
		}
		run := func() error {
			if !a.store.ArchiveEmployee(cmd.Context(), id) {
				return reported
			}
			return nil
		}
		return a.finish(run())
	},
}

// fillDraft applies the explicitly set form flags to the store's draft and
// validates the result.
func fillDraft(fs *pflag.FlagSet, st *store.Store, ff *formFlags) (employee.Draft, error) {
	if fs.Changed(flags.FlagImage) && fs.Changed(flags.FlagImageURL) {
		return employee.Draft{}, usageErrorf("--%s and --%s are mutually exclusive", flags.FlagImage, flags.FlagImageURL)
	}
	for _, f := range []struct {
		flag, field string
		value       any
	}{
		{flags.FlagEmployeeID, employee.FieldEmployeeID, ff.employeeID},
		{flags.FlagName, employee.FieldName, ff.name},
		{flags.FlagDepartment, employee.FieldDepartment, ff.department},
		{flags.FlagRole, employee.FieldRole, ff.role},
		{flags.FlagStatus, employee.FieldStatus, ff.status},
		{flags.FlagJoiningDate, employee.FieldJoiningDate, ff.joiningDate},
		{flags.FlagScore, employee.FieldPerformanceScore, ff.score},
		{flags.FlagIsArchived, employee.FieldIsArchived, ff.isArchived},
		{flags.FlagImageURL, employee.FieldImage, ff.imageURL},
	} {
		if !fs.Changed(f.flag) {
			continue
		}
		if err := st.SetDraftField(f.field, f.value); err != nil {
			return employee.Draft{}, usageError(fmt.Errorf("--%s: %w", f.flag, err))
		}
	}
	if fs.Changed(flags.FlagImage) {
		up, err := readUpload(ff.image)
		if err != nil {
			return employee.Draft{}, usageError(err)
		}
		st.SetDraftImage(up)
	}

	d := st.Draft()
	if err := employee.ValidateDraft(d); err != nil {
		return employee.Draft{}, usageError(fmt.Errorf("invalid employee: %w", err))
	}
	return d, nil
}

// readUpload loads an image file for a multipart upload.
func readUpload(path string) (*employee.Upload, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("--%s: path is empty", flags.FlagImage)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", flags.FlagImage, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("--%s: %s is a directory", flags.FlagImage, path)
	}
	if fi.Size() > maxUploadBytes {
		return nil, fmt.Errorf("--%s: %s is larger than %d bytes", flags.FlagImage, path, maxUploadBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", flags.FlagImage, err)
	}
	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return &employee.Upload{Filename: filepath.Base(path), ContentType: ct, Data: data}, nil
}

// findEmployee pages through the active and then the archived list until it
// finds the employee with the given id.
func findEmployee(ctx context.Context, client *api.Client, id string) (employee.Employee, error) {
	for _, archived := range []bool{false, true} {
		f := employee.DefaultFilter()
		f.Archived = archived
		for page := 1; ; page++ {
			p, err := client.ListEmployees(ctx, api.ListQuery{Page: page, Limit: lookupPageSize, Filter: f})
			if err != nil {
				return employee.Employee{}, err
			}
			for _, e := range p.Employees {
				if e.ID == id {
					return e, nil
				}
			}
			if len(p.Employees) < lookupPageSize {
				break
			}
			// Without a server count a full page says nothing about the rest.
			if p.TotalReported && page*lookupPageSize >= p.Total {
				break
			}
			if page >= maxLookupPages {
				return employee.Employee{}, fmt.Errorf("employee %s not found in the first %d pages", id, maxLookupPages)
			}
		}
	}
	return employee.Employee{}, fmt.Errorf("employee %s not found", id)
}

func addFormFlags(cmd *cobra.Command, ff *formFlags) {
	fl := cmd.Flags()
	fl.StringVar(&ff.employeeID, flags.FlagEmployeeID, "", "Employee ID shown to people (e.g. E-100)")
	fl.StringVar(&ff.name, flags.FlagName, "", "Full name")
	fl.StringVar(&ff.department, flags.FlagDepartment, "", "Department")
	fl.StringVar(&ff.role, flags.FlagRole, "", "Role")
	fl.StringVar(&ff.status, flags.FlagStatus, string(employee.StatusActive), `Status: "Active" or "On Leave"`)
	fl.StringVar(&ff.joiningDate, flags.FlagJoiningDate, "", "Joining date, YYYY-MM-DD")
	fl.IntVar(&ff.score, flags.FlagScore, employee.DefaultScore, "Performance score, 1-100")
	fl.BoolVar(&ff.isArchived, flags.FlagIsArchived, false, "Mark the employee as archived")
	fl.StringVar(&ff.image, flags.FlagImage, "", "Upload this image file as the profile picture")
	fl.StringVar(&ff.imageURL, flags.FlagImageURL, "", "Use this URL as the profile picture")
}

func init() {
	employeesCmd.AddCommand(employeesCreateCmd)
	employeesCmd.AddCommand(employeesUpdateCmd)
	employeesCmd.AddCommand(employeesArchiveCmd)
	addFormFlags(employeesCreateCmd, &createOpts)
	addFormFlags(employeesUpdateCmd, &updateOpts)
}
