// Package schema has the tables, enums, statistics and report models shared by every part of bugsheet.
package schema
