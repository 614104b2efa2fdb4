// Package download retrieves subject data from the study dataset through the
// DataLad CLI.
//
// Service resolves which subjects to fetch, clones the dataset when it is not
// yet present, retrieves each subject without aborting on individual
// failures, and summarizes the outcomes in a YAML report. CommandBuilder
// exposes the workflow as the get command.
package download
