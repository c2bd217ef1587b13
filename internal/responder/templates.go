package responder

// Fixed response copy. Sets with more than one entry are sampled uniformly
// by the generator's picker; the choice is cosmetic and never changes the
// topic, confidence or escalation semantics of the response.

var clarifyingPrompts = []string{
	"¿Podrías darme más detalles sobre tu consulta? Así te doy una respuesta precisa.",
	"No estoy seguro de haber entendido. ¿Me cuentas un poco más sobre lo que necesitas?",
	"¿Tu consulta es sobre una operación, una factura o una cotización? Con eso te oriento mejor.",
}

var gratitudeReplies = []string{
	"¡Con gusto! Estoy aquí para ayudarte cuando lo necesites.",
	"¡De nada! Si surge algo más sobre tus envíos, escríbeme.",
	"Un placer ayudarte. Que tengas excelente día.",
}

const (
	genericWelcome = "¡Hola%s! Soy tu asistente logístico. Puedo ayudarte con operaciones, facturas, cotizaciones y seguimiento de envíos. ¿En qué te apoyo hoy?"

	welcomeOpsAndInvoices = "¡Hola%s! Veo que tienes operaciones activas y %d factura(s) pendiente(s). ¿Quieres revisar el estado de tus envíos o tus facturas?"

	welcomeActiveOps = "¡Hola%s! Tienes operaciones activas en curso. ¿Quieres que revisemos el estado de alguna?"

	welcomeOverdue = "¡Hola%s! Te recuerdo que tienes %d factura(s) vencida(s). Te conviene regularizarlas para evitar contratiempos con tus envíos."

	operationGuidance = "Sobre la operación %s: puedes consultar su estado, documentos y eventos de seguimiento desde la sección de operaciones. ¿Qué necesitas saber de ella?"

	deliveryPersonal = "Según tu historial, tus entregas están tomando en promedio %.1f días. Tus operaciones activas deberían llegar dentro de ese rango."

	deliveryGeneric = "Los tiempos de entrega habituales son de 3 a 5 días para envíos nacionales y de 7 a 15 días para internacionales. Con un número de operación te doy un estimado exacto."

	pricingGuidance = "El costo depende del tipo de carga, el peso y el destino. Puedo generarte una cotización formal si me compartes esos datos."

	documentGuidance = "Para tus envíos manejamos carta porte, factura comercial y certificados de origen. Todos los documentos de una operación quedan disponibles en su detalle."

	quoteGuidance = "Perfecto, iniciemos tu cotización. Necesito origen, destino, tipo de carga y peso aproximado. ¿Me los compartes?"

	cancelGuidance = "Para gestionar una cancelación necesitamos validar tu caso. Puedes llamarnos al 800-555-0100 o escribir a soporte@logistica.mx y un asesor te acompaña en el proceso."

	requestSpecifics = "Claro que sí. ¿Me indicas exactamente qué necesitas? Por ejemplo: una cotización, el estado de una operación o una factura."

	complaintReply = "Lamento mucho el inconveniente%s. Registré tu caso y lo escalé con nuestro equipo; un asesor se pondrá en contacto contigo muy pronto para resolverlo."

	urgentReply = "Entiendo la urgencia. Escalé tu caso con prioridad alta: un asesor te contactará de inmediato. Si no puedes esperar, llámanos al 800-555-0100, línea disponible 24/7."

	farewellWithOps = "¡Hasta pronto%s! Seguiré monitoreando tus operaciones activas y te aviso si hay novedades."

	farewellPlain = "¡Hasta pronto%s! Escríbeme cuando necesites apoyo con tus envíos."

	followUpOperations = "Claro, sigamos con tus operaciones. ¿Quieres ver el estado de otro envío o algún detalle en particular?"

	followUpGeneric = "Por supuesto, dime en qué más te puedo ayudar."

	clarificationMenu = "Con gusto te explico. Puedo apoyarte con: operaciones y seguimiento de envíos, facturas y pagos, cotizaciones, y soporte técnico. ¿Cuál de estos temas te interesa?"

	capabilitiesReply = "Puedo ayudarte a consultar tus operaciones y envíos, revisar facturas, generar cotizaciones y darte seguimiento de entregas. ¿Por dónde empezamos?"
)

// Suggested action labels. The session API turns a selected label into the
// message "Quiero " + label.
const (
	actionViewOperations  = "ver mis operaciones"
	actionReviewInvoices  = "revisar facturas pendientes"
	actionRequestQuote    = "solicitar una cotización"
	actionOperationDetail = "ver el detalle de la operación"
	actionTalkToAgent     = "hablar con un asesor"
)
