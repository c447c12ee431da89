package main

// Sample represents a benchmark text sample.
type Sample struct {
	Name string
	Text string
}

// Samples contains realistic work messages at varying lengths, written with
// the spelling and agreement mistakes the relay is meant to fix.
var Samples = []Sample{
	{
		Name: "tiny",
		Text: "je sui fatigé, on peu décalé la réunion a demain ?",
	},
	{
		Name: "short",
		Text: `Bonjour à tous,

je voulais vous dire que la mise en production d'hier c'est bien passé. Tout les services tourne correctement et on a pas vu d'erreurs dans les logs pour l'instant. Le seul soucis c'est le temps de réponse de la recherche qui est un peu plus élevé que prévu, environ 450ms au lieu de 300ms. Je regarde sa aujourd'hui et je vous tiens au courant.

Merci`,
	},
	{
		Name: "medium",
		Text: `Bonjour Sarah,

suite a notre échange de ce matin, j'ai regarder le problème d'authentification que plusieurs utilisateurs ont remonter la semaine dernière. Après avoir analysé les logs, il semble que le soucis vient de la façon dont on gère le rafraichissement du jeton quand la session expire pendant que l'utilisateur remplis un long formulaire.

Ce qui ce passe : le jeton expire, l'appel de rafraichissement renvoi un nouveau jeton, mais la requête d'origine est perdu car on ne la rejoue pas. Du coup l'utilisateur perd ses données, ce qui est très frustrant surtout pour le formulaire d'inscription qui a genre 15 champs.

Je pense que le mieux serait de mettre en place une file d'attente qui garde les requêtes en attente pendant le rafraichissement et les rejoue une fois qu'on a le nouveau jeton. Je peux avoir une première version prête pour jeudi si tu es d'accord.

Bonne journée`,
	},
}

// QualitySamples are short inputs exercising one class of mistake each.
// Used by --quality to eyeball the output for every mode.
var QualitySamples = []Sample{
	{Name: "conjugaison", Text: "je sui fatigé"},
	{Name: "accord", Text: "les documents que tu m'a envoyé sont complet"},
	{Name: "homophones", Text: "sa marche pas, ces pas grave on verra sa demain"},
	{Name: "ponctuation", Text: "merci pour ton retour je regarde ça demain matin bonne soirée"},
	{Name: "registre", Text: "salut, tu peux m'envoyer le devis vite fait stp"},
}
