package testutil

// IssuesCSV is a small export shaped like the issue tracker's CSV download.
const IssuesCSV = `Clave,Resumen,Estado,Prioridad,Area,Creada,Actualizada,Horas
AB-101,fallo en login,Cerrado,Alta,Soporte,15/03/2023 10:22,20/03/2023,"1,500"
AB-102,Error al exportar,En curso,Media,Desarrollo,02/04/2023,05/04/2023,3
CD-201,12 pruebas,Resuelto,Highest,Soporte,10/01/2024,11/01/2024,0
CD-202,revisar permisos,Cancelado,Baja,Infra,28/02/2024,01/03/2024,abc
AB-103,Nueva pantalla,Abierto,Crítica,Desarrollo,2024-03-05,2024-03-06,2.5
`

// IssuesCSVWithBOM is IssuesCSV preceded by a UTF-8 byte order mark.
const IssuesCSVWithBOM = "\ufeff" + IssuesCSV
