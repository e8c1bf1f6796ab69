package service

import "errors"

// Sentinel errors. Handlers map them to HTTP status codes with errors.Is.
var (
	ErrNoEncontrado  = errors.New("registro no encontrado")
	ErrSinPermiso    = errors.New("permisos insuficientes")
	ErrNoAutenticado = errors.New("autenticacion requerida")
	ErrFechaInvalida = errors.New("fecha invalida, use YYYY-MM-DD")
	ErrDatoInvalido  = errors.New("dato invalido")

	ErrCredenciales  = errors.New("credenciales invalidas")
	ErrUsuarioExiste = errors.New("ya existe un usuario con ese email")

	ErrCarritoVacio       = errors.New("el carrito esta vacio")
	ErrProductoInactivo   = errors.New("el producto esta inactivo")
	ErrStockInsuficiente  = errors.New("stock insuficiente")
	ErrMetodoNoAceptado   = errors.New("la tienda no acepta este metodo de pago")
	ErrTiendaInactiva     = errors.New("la tienda esta inactiva")
	ErrVentaYaDevuelta    = errors.New("la venta ya fue devuelta")
	ErrSKUDuplicado       = errors.New("ya existe un producto con ese SKU")
	ErrNumeroNoDisponible = errors.New("no se pudo generar un numero de cliente libre")

	ErrSinCliente           = errors.New("un apartado requiere un cliente registrado")
	ErrAnticipoInsuficiente = errors.New("el anticipo debe ser al menos el 10% del total")
	ErrAnticipoExcedeTotal  = errors.New("el anticipo cubre el total; registre una venta")
	ErrMontoInvalido        = errors.New("el monto debe ser mayor a cero, con maximo dos decimales, sin exceder el saldo pendiente")
	ErrEstadoInvalido       = errors.New("la operacion no es valida en el estado actual del apartado")
	ErrApartadoVencido      = errors.New("el apartado vencio")
	ErrSaldoPendiente       = errors.New("el apartado aun tiene saldo pendiente")
	ErrYaEntregado          = errors.New("el apartado ya fue entregado")
)
