// Package fuzztests houses Go fuzz harnesses for the front of the pipeline:
// source -> tree reader -> parser -> link and layout checks. The harnesses
// look for panics, hangs and malformed spans on arbitrary inputs.
//
// Назначение: прогонять байты через itf.Read, parser.Parse и
// driver.DiagnoseSource.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/source, internal/itf, internal/parser,
// internal/driver, internal/testkit.
package fuzztests
