package cmd

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iksnae/ideasurge/internal"
	"github.com/spf13/cobra"
)

var (
	inspectChunkSize  int
	inspectSampleRows int
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Inspect captured streams and the idea database",
	Long: `Debugging tools for the two inputs ideasurge depends on.

Examples:
  ideasurge inspect stream capture.txt                 # Dump decoded frames
  ideasurge inspect stream capture.txt --chunk-size 7  # Decode in 7-byte chunks
  ideasurge inspect db --sample 5                      # Tables and sample rows`,
}

var inspectStreamCmd = &cobra.Command{
	Use:   "stream <capture-file>",
	Short: "Decode a captured frame stream",
	Long: `Decode a captured stream frame by frame and report what the idea
extractor makes of the transcript. --chunk-size feeds the decoder in pieces
of that many bytes, the way a network read might split them.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := openReplay(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = body.Close() }()
		data, err := io.ReadAll(body)
		if err != nil {
			return &internal.StorageError{Path: args[0], Op: "read", Err: err}
		}
		return inspectStream(cmd.OutOrStdout(), data, inspectChunkSize)
	},
}

var inspectDBCmd = &cobra.Command{
	Use:   "db [database-path]",
	Short: "Inspect the SQLite idea database",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := cfg.Database.Path
		if len(args) > 0 {
			dbPath = args[0]
		} else if cfg.Database.Driver != "sqlite" {
			return fmt.Errorf("inspect db only supports sqlite (configured driver: %s)", cfg.Database.Driver)
		}
		return inspectDatabase(cmd.Context(), cmd.OutOrStdout(), dbPath)
	},
}

func inspectStream(out io.Writer, data []byte, chunkSize int) error {
	dec := internal.NewStreamDecoder()
	counts := make(map[internal.EventKind]int)
	n := 0
	if chunkSize <= 0 {
		chunkSize = len(data) + 1
	}
	for start := 0; start < len(data); start += chunkSize {
		end := min(start+chunkSize, len(data))
		for _, ev := range dec.Write(data[start:end]) {
			n++
			counts[ev.Kind]++
			fmt.Fprintf(out, "%4d  %-11s %s\n", n, ev.Kind, describeEvent(ev))
		}
	}
	if dropped := dec.Finish(); dropped > 0 {
		fmt.Fprintf(out, "⚠️  %d byte(s) of unterminated frame discarded\n", dropped)
	}

	extraction := internal.ExtractIdeas(dec.Text(), internal.NewBatchTimestamp(time.Now()))
	fmt.Fprintln(out)
	fmt.Fprintf(out, "📊 Frames: %d (text %d, tool calls %d, tool results %d, errors %d)\n",
		n, counts[internal.EventTextDelta], counts[internal.EventToolCall],
		counts[internal.EventToolResult], counts[internal.EventError])
	fmt.Fprintf(out, "📝 Transcript: %d byte(s)\n", len(dec.Text()))
	fmt.Fprintf(out, "💡 Ideas: %d (dialect: %s)\n", len(extraction.Ideas), extraction.Dialect)
	for i, idea := range extraction.Ideas {
		fmt.Fprintf(out, "   [%d] %s\n", i+1, idea.Title)
	}
	return nil
}

func describeEvent(ev internal.Event) string {
	switch ev.Kind {
	case internal.EventTextDelta, internal.EventError:
		return truncate(fmt.Sprintf("%q", ev.Text), 100)
	case internal.EventToolCall:
		return fmt.Sprintf("%s (%s) %s", ev.ToolCall.Name, ev.ToolCall.ID, truncate(ev.ToolCall.Label(), 60))
	case internal.EventToolResult:
		return fmt.Sprintf("%s %d byte(s)", ev.ToolResult.ID, len(ev.ToolResult.Result))
	default:
		return ""
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func inspectDatabase(ctx context.Context, out io.Writer, dbPath string) error {
	db, err := internal.OpenIdeaDatabase(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	tables, err := getTables(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to get tables: %w", err)
	}

	if len(tables) == 0 {
		fmt.Fprintln(out, "⚠️  No tables found in database")
		return nil
	}

	fmt.Fprintf(out, "📋 Database: %s\n", dbPath)
	fmt.Fprintf(out, "📊 Found %d table(s)\n\n", len(tables))

	for _, tableName := range tables {
		if err := inspectTable(ctx, out, db, tableName); err != nil {
			fmt.Fprintf(out, "⚠️  Error inspecting table %s: %v\n", tableName, err)
			continue
		}
		fmt.Fprintln(out)
	}

	return nil
}

func getTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type='table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			continue
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func inspectTable(ctx context.Context, out io.Writer, db *sql.DB, tableName string) error {
	fmt.Fprintf(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(out, "📦 Table: %s\n", tableName)
	fmt.Fprintf(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")

	var rowCount int
	if err := db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %q", tableName)).Scan(&rowCount); err != nil {
		return fmt.Errorf("failed to get row count: %w", err)
	}
	fmt.Fprintf(out, "📊 Rows: %d\n", rowCount)

	if tableName == "idea_records" && rowCount > 0 {
		if err := showStatusCounts(ctx, out, db); err != nil {
			return err
		}
	}
	fmt.Fprintln(out)

	columns, err := getTableSchema(ctx, db, tableName)
	if err != nil {
		return fmt.Errorf("failed to get schema: %w", err)
	}

	fmt.Fprintf(out, "📐 Schema:\n")
	for _, col := range columns {
		pk := ""
		if col.PrimaryKey {
			pk = " [PRIMARY KEY]"
		}
		notNull := ""
		if col.NotNull {
			notNull = " NOT NULL"
		}
		fmt.Fprintf(out, "  • %s: %s%s%s\n", col.Name, col.Type, notNull, pk)
	}
	fmt.Fprintln(out)

	if rowCount > 0 && inspectSampleRows > 0 {
		if err := showSampleData(ctx, out, db, tableName, columns, inspectSampleRows); err != nil {
			fmt.Fprintf(out, "⚠️  Error showing sample data: %v\n", err)
		}
	}

	return nil
}

func showStatusCounts(ctx context.Context, out io.Writer, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, "SELECT status, COUNT(*) FROM idea_records GROUP BY status ORDER BY status")
	if err != nil {
		return fmt.Errorf("failed to count statuses: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return err
		}
		fmt.Fprintf(out, "   %s: %d\n", status, n)
	}
	return rows.Err()
}

// ColumnInfo describes one column reported by PRAGMA table_info
type ColumnInfo struct {
	Name       string
	Type       string
	NotNull    bool
	PrimaryKey bool
}

func getTableSchema(ctx context.Context, db *sql.DB, tableName string) ([]ColumnInfo, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", tableName))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var columns []ColumnInfo
	for rows.Next() {
		var col ColumnInfo
		var cid int
		var notNull, pk int
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &defaultValue, &pk); err != nil {
			continue
		}
		col.NotNull = notNull == 1
		col.PrimaryKey = pk == 1
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func showSampleData(ctx context.Context, out io.Writer, db *sql.DB, tableName string, columns []ColumnInfo, limit int) error {
	if len(columns) == 0 {
		return nil
	}

	colNames := make([]string, len(columns))
	for i, col := range columns {
		colNames[i] = fmt.Sprintf("%q", col.Name)
	}

	query := fmt.Sprintf("SELECT %s FROM %q LIMIT %d", strings.Join(colNames, ", "), tableName, limit)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	fmt.Fprintf(out, "📄 Sample Data (first %d rows):\n", limit)
	rowNum := 0
	for rows.Next() {
		rowNum++
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			fmt.Fprintf(out, "  ⚠️  Row %d: error scanning: %v\n", rowNum, err)
			continue
		}

		fmt.Fprintf(out, "\n  Row %d:\n", rowNum)
		for i, col := range columns {
			fmt.Fprintf(out, "    %s: %s\n", col.Name, formatCell(tableName, col.Name, values[i]))
		}
	}

	return rows.Err()
}

// formatCell renders a sampled value; the source column of idea_records is
// a JSON array and is shown compacted
func formatCell(table, column string, val interface{}) string {
	if val == nil {
		return "<NULL>"
	}
	var valStr string
	switch v := val.(type) {
	case []byte:
		valStr = string(v)
	default:
		valStr = fmt.Sprintf("%v", v)
	}

	if table == "idea_records" && column == "source" {
		var urls []string
		if json.Unmarshal([]byte(valStr), &urls) == nil {
			return strings.Join(urls, ", ")
		}
	}

	if strings.Contains(valStr, "\n") {
		valStr = strings.Split(valStr, "\n")[0] + "..."
	}
	return truncate(valStr, 200)
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.AddCommand(inspectStreamCmd)
	inspectCmd.AddCommand(inspectDBCmd)
	inspectStreamCmd.Flags().IntVar(&inspectChunkSize, "chunk-size", 32*1024, "Decode the capture in chunks of this many bytes")
	inspectDBCmd.Flags().IntVar(&inspectSampleRows, "sample", 3, "Number of sample rows to show")
}
