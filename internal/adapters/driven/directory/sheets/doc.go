// Package sheets implements driven.IdentityDirectory on a Google spreadsheet.
//
// The service account authenticates with a JWT signed by its private key.
// Users live on the first sheet whose A1:D1 header looks like a user table
// ("Ad" ... "E-posta"); otherwise the first sheet is used.
package sheets
