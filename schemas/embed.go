// Package schemas bundles the JSON Schemas for artifacts written by the CLI.
package schemas

import _ "embed"

// StudentRecordsName is the file name of the student records schema.
const StudentRecordsName = "student_records.schema.json"

// StudentRecords is the schema for the output of parse-roster.
//
//go:embed student_records.schema.json
var StudentRecords string
