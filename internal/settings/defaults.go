// internal/settings/defaults.go
package settings

// Default returns the settings a fresh installation starts with.
func Default() Settings {
	return Settings{
		Name:         "Universo Fitness",
		OwnerName:    "Viviane",
		Contact:      "557930437610",
		LogoURL:      "/universo-fitness/universo.webp",
		CoverURL:     "/universo-fitness/2021-06-02.webp",
		About:        "A Universo Fitness é a sua casa em Aracaju. Localizada no coração do Inácio Barbosa, oferecemos infraestrutura de ponta com equipamentos Classic e Mirage, garantindo o melhor ambiente para sua musculação e funcional.",
		Announcement: "🔥 MATRÍCULAS ABERTAS! Venha conhecer nossa unidade Inácio Barbosa.",
		OpeningHours: "Seg-Sex: 05:30 às 22:00 | Sáb: 08:00 às 13:00",
		MonthlyFee:   DefaultMonthlyFee,
		Trainers: []Trainer{
			{ID: "1", Name: "Viviane", Specialty: "Proprietária & Gestão", Photo: "/universo-fitness/2021-10-09 (1).webp"},
			{ID: "2", Name: "Time Universo", Specialty: "Musculação / Hipertrofia", Photo: "/universo-fitness/unnamed (1).webp"},
		},
		Templates: Templates{
			Welcome:         "Olá {name}, seja muito bem-vindo(a) à Família Universo Fitness! 🏋️‍♂️ Cadastro ok! Sua mensalidade vence no dia {due_date}. #VemPraUniverso",
			Billing:         "Oi {name}! Passando para lembrar que sua mensalidade na Universo Fitness vence em {due_date}. Qualquer dúvida, fale com a Viviane no (79) 3043-7610.",
			Holiday:         "Fala {name}! Teremos horários especiais neste feriado. Fique atento às nossas redes sociais da Universo Fitness!",
			NewRegistration: "Olá Viviane! 👋 Um novo aluno acabou de se cadastrar pelo site:\n\n👤 Nome: {name}\n📱 WhatsApp: {whatsapp}\n🆔 ID de Acesso: {id}\n\nVerifique o Dashboard para confirmar o pagamento e liberar o acesso!",
			SummerPromo:     "O verão chegou na Universo Fitness, {name}! ☀️ Traga um amigo para se matricular e ganhe 15 dias de bônus no seu plano atual. Promoção válida para o mês de Dezembro!",
			WeeklyWorkout:   "Fala {name}, foco total! 🦾 O desafio da semana na Universo é Intensidade Máxima. Já conferiu sua nova planilha de treino no mural da recepção?",
		},
	}
}
