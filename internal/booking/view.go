package booking

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/wolfman30/hospital-booking/internal/hospital"
)

// RenderDoctors writes the doctor list in the order it was fetched.
func RenderDoctors(w io.Writer, doctors []hospital.Doctor) error {
	if len(doctors) == 0 {
		_, err := fmt.Fprintln(w, "No doctors available.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSPECIALIZATION\tSTATUS")
	for _, d := range doctors {
		status := "available"
		if !d.Bookable() {
			status = "not available"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", d.ID, d.Name, d.Specialization, status)
	}
	return tw.Flush()
}

// RenderSelection writes the form heading for the selected doctor.
func RenderSelection(w io.Writer, doctor hospital.Doctor) error {
	_, err := fmt.Fprintf(w, "Book Appointment with %s\n", doctor.Name)
	return err
}

// RenderMessage writes the current message, or nothing when it is empty.
func RenderMessage(w io.Writer, msg Message) error {
	if msg.Empty() {
		return nil
	}
	_, err := fmt.Fprintln(w, msg.Text)
	return err
}
