// Package e2e provides end-to-end tests; this file builds a realistic data
// directory for the ingestion pipeline.
package e2e

import (
	"os"
	"path/filepath"
)

const faqJSON = `{
  "items": [
    {
      "question": "Quels sont les horaires de la bibliothèque ?",
      "answer": "La bibliothèque est ouverte du lundi au vendredi de 8h à 20h.",
      "categorie": "Vie étudiante",
      "tags": ["bibliothèque", "horaires"]
    },
    {
      "question": "La bibliothèque est-elle ouverte le samedi ?",
      "answer": "Oui, la bibliothèque ouvre le samedi de 9h à 13h.",
      "categorie": "Vie étudiante",
      "tags": ["bibliothèque", "week-end"]
    },
    {
      "question": "Comment justifier une absence à un examen ?",
      "answer": "Transmettez un justificatif à la scolarité sous 48h.",
      "categorie": "Examens",
      "tags": ["absence", "examen"]
    },
    {
      "question": "Quand commencent les vacances de Noël ?",
      "answer": "Les vacances de Noël commencent le 19 décembre.",
      "categorie": "Calendrier",
      "tags": ["vacances"]
    }
  ]
}`

const contactsJSON = `[
  {
    "service": "Scolarité",
    "nom": "Marie Durand",
    "role": "Responsable scolarité",
    "categorie": "Services administratifs",
    "email": "scolarite@campus.fr",
    "tel": "01 23 45 67 89",
    "batiment": "Bâtiment A",
    "horaires": "9h-17h"
  },
  {
    "service": "Master IA",
    "nom": "Paul Martin",
    "role": "Responsable pédagogique",
    "categorie": "Responsables pédagogiques",
    "email": "paul.martin@campus.fr",
    "formations": "M1-IA, M2-IA"
  },
  {
    "service": "Helpdesk informatique",
    "email": "helpdesk@campus.fr",
    "tel": "01 23 45 67 00"
  }
]`

const proceduresJSON = `[
  {
    "titre": "Demande de bourse",
    "resume": "Constituer le dossier social étudiant.",
    "etapes": [
      "Créer un compte sur le portail des aides",
      "Remplir le dossier social étudiant",
      "Déposer les pièces justificatives"
    ],
    "public": "étudiants"
  },
  {
    "titre": "Réinscription administrative",
    "resume": "La réinscription se fait en ligne chaque été.",
    "etapes": ["Se connecter au portail étudiant", "Régler les frais d'inscription"]
  }
]`

const timetableCSV = "EXPORT EMPLOI DU TEMPS\n" +
	"genere le 2026-08-30\n" +
	";formation,groupe,semestre,jour,heure_debut,heure_fin,matiere_code,matiere_nom,type_cours,enseignant_nom,salle_code,salle_nom,batiment;\n" +
	";M1-IA,A,S1,lundi,09:00,11:00,ML101,Machine Learning,CM,Dr. Lefevre,B204,Salle Turing,Batiment B;\n" +
	";M1-IA,A,S1,mardi,14:00,16:00,ST201,Statistiques,TD,Mme Caron,B101,,;\n" +
	";B3-CYBER,B,S1,jeudi,10:00,12:00,CY301,Cybersécurité offensive,TP,M. Diallo,C12,,Batiment C;\n"

// WriteDataDir lays out the standard ingest files under dir.
func WriteDataDir(dir string) error {
	files := map[string]string{
		"faq.json":        faqJSON,
		"contacts.json":   contactsJSON,
		"procedures.json": proceduresJSON,
		"timetable.csv":   timetableCSV,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0600); err != nil {
			return err
		}
	}
	return nil
}
