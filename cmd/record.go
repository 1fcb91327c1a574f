package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	filerecord "github.com/deploymenttheory/go-ntfs/internal/parsers/file_record"
	"github.com/deploymenttheory/go-ntfs/internal/types"
	"github.com/deploymenttheory/go-ntfs/pkg/app"
)

var recordCmd = &cobra.Command{
	Use:   "record [image-path] [record-number]",
	Short: "Decode a single MFT File Record",
	Long: `Decode one File Record from the Master File Table and print its header,
attributes and typed attribute values.

Examples:
  # The $MFT record itself
  go-ntfs record volume.raw 0

  # The root directory as JSON
  go-ntfs record volume.raw 5 -o json`,

	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.ParseUint(args[1], 0, 64)
		if err != nil {
			return app.NewError(app.ErrCodeInvalidInput, "invalid record number", err)
		}
		return runRecord(cmd, args[0], n)
	},
}

func init() {
	rootCmd.AddCommand(recordCmd)
}

func runRecord(cmd *cobra.Command, imagePath string, n uint64) error {
	ctx, err := newAppContext(cmd)
	if err != nil {
		return err
	}

	vol, err := app.OpenVolume(ctx, imageTarget(imagePath))
	if err != nil {
		ctx.Error("failed to open volume", zap.String("image", imagePath), zap.Error(err))
		return err
	}
	defer vol.Close()

	rec, err := vol.Record(ctx, n)
	if err != nil {
		ctx.Error("failed to decode record", zap.Uint64("record", n), zap.Error(err))
		return app.ClassifyError(fmt.Sprintf("failed to decode record %d", n), err)
	}

	out := describeRecord(rec)
	if path, err := vol.Resolver().PathOf(ctx, n, rec); err == nil {
		out = append(fields{{"path", path}}, out...)
	} else {
		ctx.Log("path unavailable", zap.Uint64("record", n), zap.Error(err))
	}

	return writeFields(cmd.OutOrStdout(), ctx.OutputFormat, out)
}

// describeRecord lists the header, attributes and decoded values of rec
func describeRecord(rec *filerecord.Record) fields {
	h := rec.Header()
	out := fields{
		{"magic", string(h.Magic[:])},
		{"sequence", h.SequenceNumber},
		{"hard_links", h.HardLinkCount},
		{"in_use", rec.IsInUse()},
		{"directory", rec.IsDirectory()},
		{"base_record", h.BaseFileReference.String()},
		{"logfile_sequence", h.LogFileSequenceNumber},
		{"real_size", h.RealSize},
		{"allocated_size", h.AllocatedSize},
		{"first_attribute", h.FirstAttributeOffset},
		{"next_attribute_id", h.NextAttributeID},
	}
	if h.HasRecordNumber {
		out = append(out, field{"record_number", h.RecordNumber})
	}

	if si, err := rec.StandardInformation(); err == nil {
		out = append(out, field{"standard_information", fields{
			{"created", si.Times.Created},
			{"modified", si.Times.Modified},
			{"mft_modified", si.Times.MFTModified},
			{"accessed", si.Times.Accessed},
			{"file_attributes", fmt.Sprintf("0x%08X", uint32(si.FileAttributes))},
		}})
	}

	if names, err := rec.FileNames(); err == nil && len(names) > 0 {
		list := make([]fields, 0, len(names))
		for _, fn := range names {
			list = append(list, fields{
				{"name", fn.Name},
				{"namespace", fn.Namespace.String()},
				{"parent", fn.ParentDirectory.String()},
				{"real_size", fn.RealSize},
				{"allocated_size", fn.AllocatedSize},
				{"modified", fn.Times.Modified},
			})
		}
		out = append(out, field{"file_names", list})
	}

	if oid, err := rec.ObjectID(); err == nil {
		out = append(out, field{"object_id", oid.ObjectID.String()})
	}

	attrs := make([]fields, 0, len(rec.Attributes()))
	for _, attr := range rec.Attributes() {
		attrs = append(attrs, describeAttribute(attr))
	}
	out = append(out, field{"attributes", attrs})

	if notes := rec.Notes(); len(notes) > 0 {
		out = append(out, field{"notes", notes})
	}
	return out
}

func describeAttribute(attr types.Attribute) fields {
	h := attr.Header()
	out := fields{
		{"type", h.Type.String()},
		{"name", h.Name},
		{"id", h.ID},
		{"resident", attr.IsResident()},
		{"flags", fmt.Sprintf("0x%04X", uint16(h.Flags))},
	}

	switch a := attr.(type) {
	case *types.ResidentAttribute:
		out = append(out, field{"size", len(a.Data)})
	case *types.NonResidentAttribute:
		runs := make([]fields, 0, len(a.Runs))
		for _, r := range a.Runs {
			runs = append(runs, fields{
				{"vcn", r.StartVCN},
				{"lcn", r.LCN},
				{"length", r.Length},
				{"sparse", r.Sparse},
			})
		}
		out = append(out,
			field{"start_vcn", a.StartVCN},
			field{"last_vcn", a.LastVCN},
			field{"real_size", a.RealSize},
			field{"allocated_size", a.AllocatedSize},
			field{"initialized_size", a.InitializedSize},
			field{"runs", runs})
	}
	return out
}
